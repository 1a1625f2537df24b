package main

import "github.com/stackctl/stackctl/cmd"

func main() {
	cmd.Execute()
}
