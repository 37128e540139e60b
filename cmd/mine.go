package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emmanuelapp/scavenger/internal/config"
	"github.com/emmanuelapp/scavenger/internal/display"
	"github.com/emmanuelapp/scavenger/internal/mining"
	"github.com/emmanuelapp/scavenger/internal/poolclient"
)

var mineConfigPath string

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Run the mining pipeline",
	Long: `Scans the configured plot directories, then continuously polls the
upstream pool/node for the current block, hashes plot scoops against its
generation signature, and submits the best deadline found each round.
Runs until killed; there is no clean exit in normal operation.`,
	RunE:                  runMine,
	DisableFlagsInUseLine: true,
	SilenceUsage:          true,
}

func init() {
	mineCmd.Flags().StringVarP(&mineConfigPath, "config", "c", "", "path to config file (default: searched in known locations)")
}

func runMine(cmd *cobra.Command, args []string) error {
	path := mineConfigPath
	if path == "" {
		found, err := config.Find("")
		if err != nil {
			return fmt.Errorf("mine: %w", err)
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("mine: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("mine: %w", err)
	}

	disp := display.New(true)
	client := poolclient.New(cfg.URL, cfg.SecretPhrase, cfg.Timeout())

	m, err := mining.New(cfg, client, disp)
	if err != nil {
		return fmt.Errorf("mine: %w", err)
	}
	defer m.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m.Run(ctx)
	return nil
}
