package main

import (
	"os"

	"github.com/eshaffer321/agencia-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
