package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"finitefield.org/iconpack-gallery/internal/cli"
)

var version = "dev"

func main() {
	root := cli.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
