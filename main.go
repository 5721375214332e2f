package main

import "nearshare/cmd"

func main() {
	cmd.Execute()
}
