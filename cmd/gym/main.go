package main

import (
	"os"

	"github.com/claude/gymlog/cmd/gym/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
