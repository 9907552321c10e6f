package main

import (
	"os"

	"github.com/tsakani-green/envkeep/cmd/envkeep/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
