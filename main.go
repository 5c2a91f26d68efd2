package main

import "github.com/ByLCY/fitbox/cli"

func main() {
	cli.Execute()
}
