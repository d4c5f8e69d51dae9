package main

import "taxtree/internal/cli"

func main() {
	cli.Execute()
}
