package main

import "github.com/x-heep/socgen/cmd"

func main() {
	cmd.Execute()
}
