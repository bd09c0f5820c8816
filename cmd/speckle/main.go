package main

import "github.com/LdDl/speckle-go/internal/cli"

func main() {
	cli.Execute()
}
