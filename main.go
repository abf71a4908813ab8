package main

import "github.com/Bitlatte/tome/cmd"

func main() {
	cmd.Execute()
}
