package main

import "github.com/scprotocol/scctl/cmd"

func main() {
	cmd.Execute()
}
