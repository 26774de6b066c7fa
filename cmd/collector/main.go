package main

import "github.com/michalnik/money-collector/internal/cli"

func main() {
	cli.Execute()
}
