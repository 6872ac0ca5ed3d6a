package main

import (
	"os"

	"github.com/repeatio/examweb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
