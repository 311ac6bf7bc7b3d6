package main

import (
	"os"

	"github.com/physiktrainer/physiktrainer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
