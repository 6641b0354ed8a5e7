package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/banscii.go/pkg/env"
	fx "github.com/robotalks/banscii.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	conf := env.MustLoad()
	regions, err := conf.NewRegions(true)
	if err != nil {
		glog.Fatalf("map regions failed: %v", err)
	}
	defer regions.Close()
	a, err := conf.NewArtist(regions)
	if err != nil {
		glog.Fatalf("create artist failed: %v", err)
	}

	ctx := fx.NewRunner().HandleSignals().Context
	if err := conf.ServeTalent(ctx, a); err != nil && !errors.Is(err, context.Canceled) {
		glog.Fatalf("serve %q failed: %v", conf.TalentURL, err)
	}
}
