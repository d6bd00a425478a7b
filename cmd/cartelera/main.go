package main

import (
	"cartelera/internal/cli"
)

func main() {
	cli.Execute()
}
