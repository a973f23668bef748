package main

import (
	"log/slog"
	"warfish-archive/cmd/warfish-cli/commands"
	"warfish-archive/lib/serviceutil"
	"warfish-archive/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "warfish-cli")
	if err == nil {
		defer tel.Shutdown(ctx)
	} else {
		slog.Debug("running without telemetry", "err", err)
	}

	commands.ExecuteContext(ctx)
}
