package main

import (
	"os"

	"github.com/wolfdata/schemascan/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
