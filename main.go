package main

import "github.com/brogergvhs/picdl/cmd"

func main() {
	cmd.Execute()
}
