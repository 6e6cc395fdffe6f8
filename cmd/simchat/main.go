package main

import "github.com/diogo/simchat/internal/commands"

func main() {
	commands.Execute()
}
