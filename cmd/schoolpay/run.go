package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

// run starts app and blocks until ctx is cancelled or a component asks fx to shut down.
func run(ctx context.Context, app *fx.App) error {
	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start schoolpay: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Wait():
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop schoolpay: %w", err)
	}
	return nil
}
