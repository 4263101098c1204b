package main

import (
	"context"
	"poloscraper/cmd/poloscraper-cli/commands"
	"poloscraper/lib/telemetry"
	"poloscraper/lib/util/serviceutil"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "poloscraper-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(serviceutil.SignalContext())
}
