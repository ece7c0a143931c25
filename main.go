package main

import (
	"droplog/cmd"
)

func main() {
	cmd.Execute()
}
