package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/meshchat-go/internal/config"
	"github.com/rmacdonaldsmith/meshchat-go/internal/observability"
)

const (
	// Application info
	appName    = "meshchat"
	appVersion = "0.1.0"
)

var (
	// Global flags
	cfgFile string

	// Loaded before any subcommand runs
	appConfig *config.Config
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Text chat over a mesh radio",
		Long: `meshchat connects to a mesh radio over USB serial or TCP, lists the nodes it
knows about, prints incoming text messages and broadcasts what you type.
Every message sent or received is appended to a local log file.

Run without a subcommand to start an interactive chat.`,
		PersistentPreRunE: loadConfig,
		RunE:              runChat,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Add global flags; values are read back through the config layer
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./meshchat.yaml or the user config dir)")
	flags.StringP("endpoint", "e", "", "Radio to use: serial device, tcp://host[:port] or loopback")
	flags.String("log-file", "", "Message log file (default message_log.txt)")
	flags.String("log-level", "", "Diagnostic log level: trace, debug, info, warn, error")
	flags.Bool("no-color", false, "Disable coloured output")
	flags.Uint32("channel", 0, "Channel index to send on")
	flags.Uint32("hop-limit", 0, "Hop limit for sent messages (default 3)")
	flags.Bool("no-audit", false, "Do not write the message log")

	// Add subcommands
	rootCmd.AddCommand(newChatCommand())
	rootCmd.AddCommand(newPortsCommand())
	rootCmd.AddCommand(newNodesCommand())
	rootCmd.AddCommand(newSendCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadConfig resolves configuration and sets up diagnostics for every command
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	appConfig = cfg

	observability.InitLogger(appName, observability.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	log.Debug().Str("command", cmd.Name()).Msg("configuration loaded")
	return nil
}
