package main

import "cdb-transformer/internal/cli"

func main() {
	cli.Execute()
}
