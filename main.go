package main

import "github.com/tunga-io/tunga/cmd"

func main() {
	cmd.Execute()
}
