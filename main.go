package main

import "github.com/wipeworks/saleorwipe/cmd"

func main() {
	cmd.Execute()
}
