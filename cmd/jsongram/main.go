package main

import "github.com/reoring/jsongram/cmd/jsongram/cmd"

func main() {
	cmd.Execute()
}
