// Package cmd provides the nearshare command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configFlag string
var spatialFlag bool
var uriFlag string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearshare [files...]",
		Short: "Share files and links with nearby devices",
		Long: `nearshare finds devices near you on the local network and sends them
files or links.

Without a subcommand it opens the interactive share screen: pick one device,
pick any number of files, press s. Files given as arguments are preloaded
and selected; --uri preloads a link to send with u.`,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.Close()
			return runTUI(c.Context(), e, args, uriFlag)
		},
	}
	cmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default $XDG_CONFIG_HOME/nearshare/config.toml)")
	cmd.PersistentFlags().BoolVar(&spatialFlag, "spatial", true, "only list devices on a directly attached network")
	cmd.Flags().StringVar(&uriFlag, "uri", "", "link to preload for sending")

	return cmd
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
