package main

import (
	"os"

	"github.com/skilllink/skilllink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
