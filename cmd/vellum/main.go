package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"vellum/internal/cli"
	"vellum/internal/observability"
)

func main() {
	root := cli.NewRootCmd(nil, newViewCmd)
	err := root.Execute()
	if err != nil {
		observability.GetLogger().Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}
