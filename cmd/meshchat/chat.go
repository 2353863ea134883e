package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	auditstore "github.com/rmacdonaldsmith/meshchat-go/internal/auditlog"
	"github.com/rmacdonaldsmith/meshchat-go/internal/config"
	"github.com/rmacdonaldsmith/meshchat-go/internal/console"
	"github.com/rmacdonaldsmith/meshchat-go/internal/session"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (default)",
		Long: `Start an interactive chat. Type a line to broadcast it to every node,
'list' to show the node list again and 'exit' to quit.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	in := cmd.InOrStdin()
	printer := newPrinter(cmd, cfg)

	endpoint, err := resolveEndpoint(ctx, cfg, newDiscoverer(cfg), in, cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		printer.Info("\nTerminated by user.")
		return nil
	}
	if err != nil {
		return err
	}

	logger, err := openAuditLogger(cfg)
	if err != nil {
		return err
	}

	sessionConfig := session.NewConfig(endpoint, newOpener(cfg), in, printer).
		WithLogger(logger).
		WithCloseTimeout(cfg.Audit.DrainTimeout)

	s, err := session.New(sessionConfig)
	if err != nil {
		logger.Close(context.Background())
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("session teardown")
		}
	}()

	if err := s.Start(ctx); err != nil {
		return err
	}

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newPrinter(cmd *cobra.Command, cfg *config.Config) *console.Printer {
	return console.NewPrinter(cmd.OutOrStdout(), console.Options{NoColor: cfg.Console.NoColor})
}

// openAuditLogger returns the message log writer; with auditing disabled entries
// are kept in memory for the life of the process only.
func openAuditLogger(cfg *config.Config) (*auditstore.AsyncLogger, error) {
	var store auditlog.Store
	if cfg.Audit.Disabled {
		store = auditstore.NewMemoryStore()
	} else {
		fs, err := auditstore.NewFileStore(cfg.AuditFileConfig())
		if err != nil {
			return nil, err
		}
		store = fs
	}
	return auditstore.New(store, cfg.AuditLoggerConfig()), nil
}
