package main

import "github.com/stephenmw/distress/internal/cli"

func main() {
	cli.Execute()
}
