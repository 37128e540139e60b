package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emmanuelapp/scavenger/internal/config"
	"github.com/emmanuelapp/scavenger/internal/display"
	"github.com/emmanuelapp/scavenger/internal/scan"
)

var (
	scanConfigPath string
	scanDirectIO   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan configured plot directories and report capacity (dry run)",
	Long: `Discovers plot files under the configured plot_dirs, groups them by
physical drive, and prints per-directory and total capacity along with
any overlap warnings. Does not contact the pool/node and never starts
the mining pipeline.`,
	RunE:                  runScan,
	DisableFlagsInUseLine: true,
	SilenceUsage:          true,
}

func init() {
	scanCmd.Flags().StringVarP(&scanConfigPath, "config", "c", "", "path to config file (default: searched in known locations)")
	scanCmd.Flags().BoolVar(&scanDirectIO, "direct-io", false, "open plots with direct I/O when scanning")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := scanConfigPath
	if path == "" {
		found, err := config.Find("")
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(cfg.PlotDirs) == 0 {
		return fmt.Errorf("scan: config: plot_dirs must not be empty")
	}

	useDirectIO := cfg.HDDUseDirectIO || scanDirectIO
	disp := display.New(true)

	result := scan.Scan(cfg.PlotDirs, useDirectIO, disp)

	fmt.Printf("\ndrives: %d, total nonces: %d\n", len(result.Drives), result.TotalNonces)
	for driveID, group := range result.Drives {
		fmt.Printf("  drive=%s plots=%d\n", driveID, len(group.Plots))
	}

	return nil
}
