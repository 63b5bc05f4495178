package main

import "github.com/tempokey/tempokey/cmd"

func main() {
	cmd.Execute()
}
