package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List radios that can be connected to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoints, err := newDiscoverer(appConfig).FindEndpoints(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(endpoints) == 0 {
				fmt.Fprintln(out, "No devices found.")
				return nil
			}
			for _, ep := range endpoints {
				if ep.Description != "" {
					fmt.Fprintf(out, "%s\t%s\n", ep.Name, ep.Description)
				} else {
					fmt.Fprintln(out, ep.Name)
				}
			}
			return nil
		},
	}
}
