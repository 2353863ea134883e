package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/meshchat-go/internal/messaging"
)

func newSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <text...>",
		Short: "Broadcast one message and exit",
		Long: `Broadcast one message to every node and exit. The arguments are joined
with spaces. The message is logged like messages sent from a chat.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("message cannot be empty")
			}

			ctx := cmd.Context()
			endpoint, err := resolveEndpoint(ctx, appConfig, newDiscoverer(appConfig), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			tr, err := newOpener(appConfig)(ctx, endpoint)
			if err != nil {
				return err
			}
			defer tr.Close()

			logger, err := openAuditLogger(appConfig)
			if err != nil {
				return err
			}
			defer func() {
				drainCtx, cancel := context.WithTimeout(context.Background(), appConfig.Audit.DrainTimeout)
				defer cancel()
				logger.Close(drainCtx)
			}()

			sender := messaging.NewSender(tr, newPrinter(cmd, appConfig), logger)
			return sender.Send(ctx, text)
		},
	}
}
