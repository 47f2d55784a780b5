package main

import "libretto/cli"

func main() {
	cli.Execute()
}
