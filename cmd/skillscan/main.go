package main

import (
	"os"

	"github.com/dshills/skillscan/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
