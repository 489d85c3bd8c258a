package main

import "dotask/internal/cli"

func main() {
	cli.Execute()
}
