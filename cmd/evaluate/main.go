// Command evaluate runs one loan application through the intake pipeline
// and prints the decision as JSON.
//
//	evaluate -application uploads/app-1/application.json uploads/app-1/passport.png uploads/app-1/ssn.jpg
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaimeStill/intake/internal/api"
	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
	"github.com/JaimeStill/intake/pkg/storage"
)

func main() {
	var (
		configPath  = flag.String("config", config.BaseConfigFile, "Path to the base config file")
		application = flag.String("application", "", "Storage key of the application JSON record")
		timeout     = flag.Duration("timeout", 0, "Abort the run after this duration (0 = no limit)")
	)
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: evaluate [-config file] [-timeout d] -application <key> <document key>...")
		fmt.Fprintln(flag.CommandLine.Output(), "Exits 3 when the application is rejected.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	approved, err := run(*configPath, *application, flag.Args(), *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "evaluate:", err)
		os.Exit(1)
	}
	if !approved {
		os.Exit(3)
	}
}

// run prints the decision as JSON and reports whether it approved the
// application.
func run(configPath, application string, documents []string, timeout time.Duration) (bool, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return false, fmt.Errorf("load config: %w", err)
	}

	logger := infrastructure.NewLogger(&cfg.Logging, os.Stderr)

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return false, fmt.Errorf("storage: %w", err)
	}

	p, err := api.NewPipeline(cfg, store, logger, nil)
	if err != nil {
		return false, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	decision, err := p.Run(ctx, documents, application)
	if err != nil {
		return false, err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(decision); err != nil {
		return false, err
	}
	return decision.Approved(), nil
}
