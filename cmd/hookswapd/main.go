package main

import "github.com/mitgajera/Token2022-Hook-AMM/internal/cli"

func main() {
	cli.Execute()
}
