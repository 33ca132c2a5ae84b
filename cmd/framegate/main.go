package main

import "github.com/framegate/framegate/internal/cli"

func main() {
	cli.Execute()
}
