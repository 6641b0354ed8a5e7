package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/banscii.go/pkg/assistant"
	"github.com/robotalks/banscii.go/pkg/env"
	fx "github.com/robotalks/banscii.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	conf := env.MustLoad()
	talent := conf.MustConnectTalent()
	port := conf.MustOpenSerial()
	a := assistant.New(port, talent.Client())

	ctx := fx.NewRunner().HandleSignals().Context
	fx.NewLoop(a).
		Add(port, talent).
		RunOrFail(ctx, port, talent)
}
