package main

import (
	"os"

	"github.com/mlihgenel/videoclipper-cli/cmd"
)

var (
	version = "1.0.0"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
