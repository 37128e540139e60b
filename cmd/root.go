package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const banner = `
 ___  ___ __ ___ __   __ ___ _ __   __ _  ___ _ __
/ __|/ __/ _` + "`" + ` \ \ / // _ \ '_ \ / _` + "`" + ` |/ _ \ '__|
\__ \ (_| (_| |\ V /|  __/ | | | (_| |  __/ |
|___/\___\__,_| \_/  \___|_| |_|\__, |\___|_|
                                 |___/           `

var (
	version   string
	buildTime string
)

var rootCmd = &cobra.Command{
	Use:   "scavenger",
	Short: "A proof-of-capacity mining client",
	Long:  banner + "\n\nscavenger scans pre-computed plot files and mines a Burst-style blockchain.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
	},
	DisableFlagsInUseLine: true,
}

// SetVersion records the build-time version and timestamp for the
// version command.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

func init() {
	versionCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}}

Prints the version and build time information for scavenger.
`)
}

// Execute runs the root command.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = false

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(scanCmd)

	rootCmd.SetUsageTemplate(`Usage:
  {{.CommandPath}} [command]

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}

Use "{{.CommandPath}} [command] --help" for more information about a command.
`)

	return rootCmd.Execute()
}
