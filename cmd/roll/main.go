// Package main is a one-shot roller: it rolls expressions into the
// configured roll log and prints the new entries.
//
// Usage:
//
//	roll [-config path] 2d6+3, d20
//	roll -log
//	roll -clear
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/config"
	"github.com/cory-johannsen/dicetool/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetool/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetool/internal/observability"
	"github.com/cory-johannsen/dicetool/internal/tabletop"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	showLog := flag.Bool("log", false, "print the roll log and exit")
	clearLog := flag.Bool("clear", false, "delete the whole roll log and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <expression>[, <expression>...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	// Diagnostics only; stdout carries the rolls.
	cfg.Logging.Level = "warn"
	logger, err := observability.NewLogger(cfg.Logging, "roll")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	svc, closeStore, err := tabletop.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building roll service", zap.Error(err))
	}

	err = run(ctx, svc, *showLog, *clearLog, strings.Join(flag.Args(), " "))
	closeStore()
	if err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, svc *tabletop.Service, showLog, clearLog bool, expr string) error {
	switch {
	case clearLog:
		if err := svc.ClearAll(ctx); err != nil {
			return fmt.Errorf("clearing roll log: %w", err)
		}
		fmt.Println("Roll log cleared.")
		return nil
	case showLog:
		printLines(handlers.RenderLog(svc.Log(ctx)))
		return nil
	case strings.TrimSpace(expr) == "":
		flag.Usage()
		return fmt.Errorf("no expression given")
	}

	recs, err := svc.RollCustom(ctx, expr)
	for i := len(recs) - 1; i >= 0; i-- {
		printLines(handlers.RenderRecord(len(recs)-1-i, recs[i]))
	}
	if err != nil {
		return fmt.Errorf("saving roll log: %w", err)
	}
	return nil
}

// printLines writes lines to stdout, dropping colours unless stdout is a terminal.
func printLines(lines []string) {
	color := isTerminal(os.Stdout)
	for _, l := range lines {
		if !color {
			l = telnet.StripANSI(l)
		}
		fmt.Println(l)
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
