package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/PeterCxy/itte/internal/app"
	"github.com/PeterCxy/itte/pkg/config"
	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/security"
	"github.com/PeterCxy/itte/pkg/state/shutdown"
)

// set build metadata
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// load .env file if present
	_ = godotenv.Load(".env")

	flags, err := config.ParseConfigFlags()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		shutdown.Abort("invalid flags", err)
	}

	if flags.GenSecret {
		fmt.Println(security.NewSecret())
		return
	}

	fileCfg, fileExists, err := config.ParseConfigFile(flags)
	if err != nil {
		shutdown.Abort("failed to load config file", err)
	}

	eff, err := config.LoadEffectiveConfig(flags, fileCfg, fileExists)
	if err != nil {
		shutdown.Abort("failed to build effective config", err)
	}

	if err := config.ValidateConfig(&eff); err != nil {
		shutdown.Abort("invalid configuration", err)
	}

	// initialize logger after config is fully loaded
	logger.InitWithLevel(eff.Config.Logging.Level)
	defer logger.Sync()

	logger.Info("effective_config_loaded", "source", eff.Source, "addr", eff.Addr, "backend", eff.Config.Storage.Backend)
	logger.Info("config_validation_passed")

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	a, err := app.New(ctx, eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("failed to initialize app", err)
	}

	runErr := a.Run(ctx)

	// bounded so teardown cannot hang forever
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer shutdownCancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	if runErr != nil {
		shutdown.Abort("app run failed", runErr)
	}
}
