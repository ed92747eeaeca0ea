package main

import (
	"github.com/niels/git-sniffer/internal/cmd"
)

func main() {
	cmd.Execute()
}
