package main

import "github.com/emiliopalmerini/mkanban/internal/cli"

func main() {
	cli.Execute()
}
