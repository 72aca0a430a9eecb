package main

import "gamewish/cmd"

func main() {
	cmd.Execute()
}
