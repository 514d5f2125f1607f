package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/emilcphu/dtu-intro-to-ml-dm/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd.Execute(ctx)
}
