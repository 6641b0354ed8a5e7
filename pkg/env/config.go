// Package env configures the components from flags and environment.
package env

import (
	"encoding/hex"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/artist"
	"github.com/robotalks/banscii.go/pkg/assistant"
	"github.com/robotalks/banscii.go/pkg/ipc"
	"github.com/robotalks/banscii.go/pkg/serial"
)

// Config provides common options to wire the assistant and the talent.
type Config struct {
	// SerialURL specifies the serial line.
	// e.g. stdio, tcp://:2323, unix:///tmp/banscii.uart
	SerialURL string

	// TalentURL specifies where the talent lives.
	// e.g. local, unix:///tmp/banscii.sock, tcp://host:port,
	// ws://host:port/talent, mqtt://host:port/topic-prefix/
	TalentURL string

	// RegionOutPath is the file backing the region the assistant writes.
	RegionOutPath string
	// RegionInPath is the file backing the region the talent writes.
	RegionInPath string

	// ArtistSeed is the hex encoded Ed25519 seed of the talent.
	// A fresh key is generated when empty.
	ArtistSeed string

	// ConfigFile is a TOML file overriding the settings above.
	ConfigFile string
}

var defaultConfig = Config{
	SerialURL:     "stdio",
	TalentURL:     "local",
	RegionOutPath: filepath.Join(os.TempDir(), "banscii.out"),
	RegionInPath:  filepath.Join(os.TempDir(), "banscii.in"),
}

func init() {
	if val := os.Getenv("BANSCII_SERIAL"); val != "" {
		defaultConfig.SerialURL = val
	}
	if val := os.Getenv("BANSCII_TALENT"); val != "" {
		defaultConfig.TalentURL = val
	}
	if val := os.Getenv("BANSCII_REGION_OUT"); val != "" {
		defaultConfig.RegionOutPath = val
	}
	if val := os.Getenv("BANSCII_REGION_IN"); val != "" {
		defaultConfig.RegionInPath = val
	}
	if val := os.Getenv("BANSCII_ARTIST_SEED"); val != "" {
		defaultConfig.ArtistSeed = val
	}
	if val := os.Getenv("BANSCII_CONFIG"); val != "" {
		defaultConfig.ConfigFile = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.SerialURL, "serial", defaultConfig.SerialURL, "Serial line URL.")
	flag.StringVar(&defaultConfig.TalentURL, "talent", defaultConfig.TalentURL, "Talent URL.")
	flag.StringVar(&defaultConfig.RegionOutPath, "region-out", defaultConfig.RegionOutPath, "File backing the region written by the assistant.")
	flag.StringVar(&defaultConfig.RegionInPath, "region-in", defaultConfig.RegionInPath, "File backing the region written by the talent.")
	flag.StringVar(&defaultConfig.ArtistSeed, "artist-seed", defaultConfig.ArtistSeed, "Hex encoded signing key seed of the talent.")
	flag.StringVar(&defaultConfig.ConfigFile, "config", defaultConfig.ConfigFile, "TOML config file.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// IsLocal tells whether the talent runs inside the assistant process.
func (c *Config) IsLocal() bool {
	return c.TalentURL == "" || c.TalentURL == "local"
}

func (c *Config) talentURL() (*url.URL, error) {
	u, err := url.Parse(c.TalentURL)
	if err != nil {
		return nil, fmt.Errorf("invalid talent URL: %w", err)
	}
	return u, nil
}

// Seed decodes ArtistSeed, nil when unset.
func (c *Config) Seed() ([]byte, error) {
	if c.ArtistSeed == "" {
		return nil, nil
	}
	seed, err := hex.DecodeString(c.ArtistSeed)
	if err != nil {
		return nil, fmt.Errorf("invalid artist seed: %w", err)
	}
	return seed, nil
}

// Regions is the pair of regions exchanged with the talent, named from the
// assistant side.
type Regions struct {
	Out *ipc.Region
	In  *ipc.Region
}

// NewRegions creates the regions: in-process for a local talent, mapped
// files otherwise. A talent maps them with the opposite access.
func (c *Config) NewRegions(talentSide bool) (*Regions, error) {
	if c.IsLocal() {
		return &Regions{
			Out: ipc.NewRegion("out", assistant.RegionSize),
			In:  ipc.NewRegion("in", assistant.RegionSize),
		}, nil
	}
	out, err := ipc.MapRegion("out", c.RegionOutPath, assistant.RegionSize, !talentSide)
	if err != nil {
		return nil, err
	}
	in, err := ipc.MapRegion("in", c.RegionInPath, assistant.RegionSize, talentSide)
	if err != nil {
		out.Close()
		return nil, err
	}
	return &Regions{Out: out, In: in}, nil
}

// Close implements io.Closer.
func (r *Regions) Close() error {
	err := r.Out.Close()
	if e := r.In.Close(); err == nil {
		err = e
	}
	return err
}

// NewArtist creates the talent on its side of the regions.
func (c *Config) NewArtist(regions *Regions) (*artist.Artist, error) {
	seed, err := c.Seed()
	if err != nil {
		return nil, err
	}
	a, err := artist.New(regions.Out.ReadOnly(), regions.In.ReadWrite(), seed)
	if err != nil {
		return nil, err
	}
	glog.Infof("artist public key %s", hex.EncodeToString(a.PublicKey()))
	return a, nil
}

// OpenSerial opens the serial line as a Port on the driver channel.
func (c *Config) OpenSerial() (*serial.Port, error) {
	rw, err := serial.Open(c.SerialURL)
	if err != nil {
		return nil, err
	}
	return serial.NewPort(assistant.UARTDriver, rw), nil
}

// MustOpenSerial opens the serial line and fails on error.
func (c *Config) MustOpenSerial() *serial.Port {
	port, err := c.OpenSerial()
	if err != nil {
		glog.Fatalf("open serial %q failed: %v", c.SerialURL, err)
	}
	return port
}
