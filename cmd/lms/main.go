package main

import (
	"github.com/AntonStoeckl/library-loans-go/cmd/lms/commands"
)

func main() {
	commands.Execute()
}
