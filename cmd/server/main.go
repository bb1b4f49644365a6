package main

import "github.com/eventloka/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
