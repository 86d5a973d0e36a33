package main

import "github.com/iksnae/flow-analyzer/cmd"

func main() {
	cmd.Execute()
}
