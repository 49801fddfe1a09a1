package main

import "github.com/pfrederiksen/standings-scraper/internal/cli"

func main() {
	cli.Execute()
}
