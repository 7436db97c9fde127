package main

import (
	"os"

	"github.com/monorkin/iot-dashboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
