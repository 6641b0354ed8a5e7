package main

import (
	"github.com/robotalks/banscii.go/pkg/cli/sh"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
