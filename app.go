package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ebuildkit/histscan/cmd"
)

func main() {
	// the scan workflow shelves working-tree state, so an interrupt must
	// cancel the running command and let its release path execute
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cmd.App()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
