package main

import (
	"os"

	"github.com/thenoetrevino/tasks/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
