package main

import (
	"os"

	"github.com/Seraphli/ccline/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
