package main

import (
	"context"
	"time"

	"github.com/niksmo/shopfinder/config"
	"github.com/niksmo/shopfinder/internal/app"
	"github.com/niksmo/shopfinder/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	shopfinder := app.New(sigCtx, cfg)

	shopfinder.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	shopfinder.Close(ctx)
}
