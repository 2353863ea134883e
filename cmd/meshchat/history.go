package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	auditstore "github.com/rmacdonaldsmith/meshchat-go/internal/auditlog"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

func newHistoryCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent logged messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("invalid count %d: must not be negative", count)
			}

			out := cmd.OutOrStdout()
			entries, err := auditstore.ReadTail(appConfig.Audit.Path, count)
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No messages logged yet (%s does not exist).\n", appConfig.Audit.Path)
				return nil
			}
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No messages logged yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprint(out, auditlog.FormatLine(e))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of entries to show (0 for all)")
	return cmd
}
