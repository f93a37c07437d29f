package main

import "listing-vault/cmd"

func main() {
	cmd.Execute()
}
