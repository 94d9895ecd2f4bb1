package main

import (
	"os"

	"github.com/matze/zk-spaced/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
