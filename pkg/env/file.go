package env

import (
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
)

type fileConfig struct {
	Serial     string `toml:"serial"`
	Talent     string `toml:"talent"`
	RegionOut  string `toml:"region_out"`
	RegionIn   string `toml:"region_in"`
	ArtistSeed string `toml:"artist_seed"`
}

// fields binds config file keys and flag names to Config fields.
func (c *Config) fields() []struct {
	key, flag string
	field     *string
} {
	return []struct {
		key, flag string
		field     *string
	}{
		{"serial", "serial", &c.SerialURL},
		{"talent", "talent", &c.TalentURL},
		{"region_out", "region-out", &c.RegionOutPath},
		{"region_in", "region-in", &c.RegionInPath},
		{"artist_seed", "artist-seed", &c.ArtistSeed},
	}
}

// LoadFile overrides the config with keys defined in a TOML file.
func (c *Config) LoadFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	values := map[string]string{
		"serial":      raw.Serial,
		"talent":      raw.Talent,
		"region_out":  raw.RegionOut,
		"region_in":   raw.RegionIn,
		"artist_seed": raw.ArtistSeed,
	}
	for _, f := range c.fields() {
		if meta.IsDefined(f.key) {
			*f.field = strings.TrimSpace(values[f.key])
		}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		glog.Warningf("config %s: unknown keys %v", path, undecoded)
	}
	return nil
}

// Load creates a Config from defaults, the ConfigFile if set, and then
// the flags given on the command line.
func Load() (*Config, error) {
	conf := NewConfig()
	if conf.ConfigFile == "" {
		return conf, nil
	}
	if err := conf.LoadFile(conf.ConfigFile); err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	defaults := defaultConfig.fields()
	for n, f := range conf.fields() {
		if set[f.flag] {
			*f.field = *defaults[n].field
		}
	}
	return conf, nil
}

// MustLoad loads the Config and fails on error.
func MustLoad() *Config {
	conf, err := Load()
	if err != nil {
		glog.Fatalln(err)
	}
	return conf
}
