package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfoltran/copyredis/internal/bridge"
	"github.com/jfoltran/copyredis/internal/control"
	"github.com/jfoltran/copyredis/internal/metrics"
	"github.com/jfoltran/copyredis/internal/tui"
	"github.com/jfoltran/copyredis/internal/upstream"
)

func runBridge(cmd *cobra.Command, args []string) error {
	collector := metrics.NewCollector(zerolog.Nop())
	defer collector.Close()

	logger, err := newLogger(collector)
	if err != nil {
		return err
	}

	if persister, err := metrics.NewStatePersister(collector, logger); err == nil {
		persister.Start()
		defer persister.Stop()
	} else {
		logger.Warn().Err(err).Msg("state persister disabled")
	}

	sup := bridge.New(cfg, newClientFactory(), collector, logger)

	ctx := cmd.Context()

	if cfg.APIPort > 0 {
		srv := control.New(collector, cfg, logger)
		srv.StartBackground(ctx, cfg.APIPort)
	}

	if cfg.TUI {
		errCh := make(chan error, 1)
		go func() { errCh <- sup.Run(ctx) }()
		if err := tui.Run(collector); err != nil {
			return err
		}
		return <-errCh
	}

	return sup.Run(ctx)
}

// newClientFactory returns the upstream.ClientFactory the Supervisor drives.
// The replication client itself — PSYNC handshake, RDB parsing, command
// stream decoding — is an external collaborator this binary does not
// implement; operators link in a real upstream.Client and replace this
// factory before shipping a working build.
func newClientFactory() upstream.ClientFactory {
	return func(upstream.ClientConfig) upstream.Client {
		return unimplementedClient{}
	}
}

type unimplementedClient struct{}

func (unimplementedClient) SetEventHandler(upstream.EventHandler) {}

func (unimplementedClient) Start(context.Context) error {
	return upstream.NewFatalClientError(errors.New("no upstream.Client wired: link in a real replication client and replace newClientFactory"))
}

func (unimplementedClient) Position() (string, int64) { return "", 0 }

var _ upstream.Client = unimplementedClient{}
