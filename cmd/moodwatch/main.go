package main

import "moodwatch/internal/cli"

func main() {
	cli.Execute()
}
