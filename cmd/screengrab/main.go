package main

import (
	"github.com/cwhitesell/screengrab/cmd/screengrab/commands"
)

func main() {
	commands.Execute()
}
