// artpassd serves the art passport registry over HTTP.
//
// Usage:
//
//	artpassd [--config artpass.yaml] [--listen :8080] [--debug]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/shamank/artpass-sdk-go/internal/httpapi"
	"github.com/shamank/artpass-sdk-go/pkg/config"
	"github.com/shamank/artpass-sdk-go/pkg/proxy"
	"github.com/shamank/artpass-sdk-go/pkg/sdk"
	"go.uber.org/zap"
	cli "gopkg.in/urfave/cli.v1"
)

const shutdownTimeout = 15 * time.Second

var (
	app = cli.NewApp()

	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "YAML configuration file; ARTPASS_* variables override it",
		EnvVar: "ARTPASS_CONFIG",
	}
	listenFlag = cli.StringFlag{
		Name:  "listen",
		Usage: "HTTP listen address (overrides listen_addr)",
	}
	debugFlag = cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app.Name = "artpassd"
	app.Usage = "Art passport registry daemon"
	app.Version = "0.1.0"
	app.Action = run
	app.Flags = []cli.Flag{configFlag, listenFlag, debugFlag}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}
	if addr := ctx.String(listenFlag.Name); addr != "" {
		cfg.ListenAddr = addr
	}
	if ctx.Bool(debugFlag.Name) {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	core, err := sdk.NewSDK(cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	indexerProxy, err := proxy.New(cfg, proxy.WithPrefix(httpapi.IndexerPrefix))
	if err != nil {
		return err
	}
	api := httpapi.New(core, httpapi.WithProxy(indexerProxy))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           gzhttp.GzipHandler(api.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("artpassd listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("network", cfg.Network.Name),
			zap.Bool("indexer_via_proxy", cfg.IndexerViaProxy))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
