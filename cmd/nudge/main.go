package main

import "nudge/internal/cli"

func main() {
	cli.Run()
}
