package main

import "go-attendance/internal/cli"

func main() {
	cli.Execute()
}
