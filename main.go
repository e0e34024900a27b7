package main

import "github.com/youzi20/yz-cli/cmd"

func main() {
	cmd.Execute()
}
