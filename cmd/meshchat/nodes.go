package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/directory"
	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

func newNodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes [node-id...]",
		Short: "Print the radio's node list and exit",
		Long: `Print the radio's node list and exit. With node ids (!a1b2c3d4, 0xa1b2c3d4
or a decimal node number) only those nodes are looked up; ids the radio does not
know are reported as Unknown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]transport.NodeID, 0, len(args))
			for _, arg := range args {
				id, err := transport.ParseNodeID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
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

			records, err := tr.Nodes(ctx)
			if err != nil {
				return fmt.Errorf("read node database: %w", err)
			}
			dir := directory.Build(records)

			if len(ids) == 0 {
				newPrinter(cmd, appConfig).Directory(dir.List())
				return nil
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				if dir.Contains(id) {
					fmt.Fprintln(out, dir.Resolve(id))
				} else {
					fmt.Fprintf(out, "%s (not in node list)\n", dir.Resolve(id))
				}
			}
			return nil
		},
	}
}
