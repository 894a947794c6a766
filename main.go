package main

import (
	"os"

	"github.com/terramesa/uplinkmap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
