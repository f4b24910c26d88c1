package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/you/chamber/internal/config"
	"github.com/you/chamber/internal/metrics"
	"github.com/you/chamber/internal/store"
)

const usage = `usage: chamber [-config path] [-log-level level] <command> [flags]

commands:
  price   [-source coinbase|binance] [-watch] [-metrics-addr addr] TICKER...
  quote   -s SELL -b BUY -a AMOUNT [-n NETWORK]
  swap    -s SELL -b BUY -a AMOUNT [-n NETWORK] [-yes]
  balance [-n NETWORK] [-address ADDR]
  config  set|get|delete|clear|show [-k KEY] [-v VALUE]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every command needs.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store store.Store
	in    io.Reader
	out   io.Writer
	errw  io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out, errw io.Writer) int {
	fs := flag.NewFlagSet("chamber", flag.ContinueOnError)
	fs.SetOutput(errw)
	fs.Usage = func() { fmt.Fprint(errw, usage) }
	cfgPath := fs.String("config", config.DefaultPath(), "path to config.yaml")
	logLevel := fs.String("log-level", "", "debug|info|warn|error (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(errw, "error: load config: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	log := newLogger(cfg.LogLevel, errw)
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(errw, "error: %v\n", err)
		return 1
	}
	if c, ok := st.(io.Closer); ok {
		defer c.Close()
	}

	a := &app{cfg: cfg, log: log, store: st, in: in, out: out, errw: errw}
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	var cmdErr error
	switch cmd {
	case "price":
		cmdErr = a.price(ctx, rest)
	case "quote":
		cmdErr = a.quote(ctx, rest)
	case "swap":
		cmdErr = a.swap(ctx, rest)
	case "balance":
		cmdErr = a.balance(ctx, rest)
	case "config":
		cmdErr = a.config(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return 0
	default:
		fmt.Fprintf(errw, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if cmd != "config" {
		if err := metrics.Push(context.WithoutCancel(ctx), cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, log); err != nil {
			log.Warn("metrics push failed", zap.Error(err))
		}
	}

	if cmdErr != nil {
		if errors.Is(cmdErr, flag.ErrHelp) {
			return 0
		}
		if errors.Is(cmdErr, errUsage) {
			return 2
		}
		log.Debug("command failed", zap.String("command", cmd), zap.Error(cmdErr))
		fmt.Fprintf(errw, "error: %s: %v\n", cmd, cmdErr)
		return 1
	}
	return 0
}
