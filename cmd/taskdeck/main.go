package main

import (
	"os"

	"github.com/saharsh3008/task/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
