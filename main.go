package main

import (
	"os"

	"github.com/evelabs/evectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
