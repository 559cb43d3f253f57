package main

import "github.com/bufwire/bufwire/cmd/bufwire/cmd"

func main() {
	cmd.Execute()
}
