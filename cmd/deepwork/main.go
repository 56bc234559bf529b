package main

import "github.com/deepworkai/deepwork/cmd/deepwork/commands"

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)
	commands.Execute()
}
