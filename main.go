package main

import "tcrbwatch/internal/cli"

func main() {
	cli.Execute()
}
