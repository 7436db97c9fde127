package main

import (
	"os"

	"github.com/monorkin/iot-dashboard/internal/cli"
)

func main() {
	if err := cli.ExecuteCommand("indicator", os.Args[1:]...); err != nil {
		os.Exit(1)
	}
}
