package main

import "github.com/ssargent/bagindex/cmd/bagidx/cmd"

func main() {
	cmd.Execute()
}
