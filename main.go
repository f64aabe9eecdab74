package main

import "github.com/tranvictor/shadowvote/cmd"

func main() {
	cmd.Execute()
}
