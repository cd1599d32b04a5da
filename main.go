package main

import "cardvault/cmd"

func main() {
	cmd.Execute()
}
