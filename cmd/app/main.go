package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/config"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: plotbook -i <book.json> | -id <id> | -b <file> | -serve <addr>")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	startTime := time.Now()
	customFlag := parseFlag()

	cfg, err := loadConfig(customFlag)
	if err != nil {
		internal.Error("Invalid configuration: %s", err.Error())
		os.Exit(1)
	}

	level, _ := internal.ParseLevel(cfg.Log.Level)
	internal.InitDefaultLogger(os.Stdout, level)

	process, err := NewExportProcess(cfg, customFlag)
	if err != nil {
		internal.Error("Something went wrong: %s", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if customFlag.ServeAddr != "" {
		err = process.serve(ctx)
	} else {
		err = process.processExport(ctx)
	}
	stop()
	process.Close()

	if err != nil {
		internal.Error("Something went wrong: %s", err.Error())
		os.Exit(1)
	}
	internal.Success("Program completed in %v", time.Since(startTime))
}

// loadConfig reads the YAML file when given and applies flag overrides.
func loadConfig(f *Flag) (*config.FileConfig, error) {
	cfg := config.Default()
	if f.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(f.ConfigPath); err != nil {
			return nil, err
		}
	}

	if f.APIURL != "" {
		cfg.API.BaseURL = f.APIURL
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.CoverImage != "" {
		cfg.Layout.CoverImagePath = f.CoverImage
	}
	if f.ServeAddr != "" {
		cfg.Server.Address = f.ServeAddr
	}
	return cfg, cfg.Validate()
}
