package main

import "github.com/stateset/stateset/cmd/stateset/commands"

func main() {
	commands.Execute()
}
