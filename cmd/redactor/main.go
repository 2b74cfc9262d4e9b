package main

import (
	"github.com/nerdneilsfield/go-privacy-redactor/internal/cli"
)

// Version information
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Execute(cli.NewRootCommand(Version, Commit, BuildDate))
}
