package main

import "github.com/noah-isme/staggered-pricing/internal/cli"

func main() {
	cli.Execute()
}
