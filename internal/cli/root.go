package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags.
	// Example: go build -ldflags "-X github.com/asad/wellhaven/internal/cli.Version=1.0.0"
	Version = "dev"

	configFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wellhaven",
	Short: "Health-checkup storefront backend",
	Long: `Wellhaven serves a health-checkup storefront: a package catalog,
customer sign-in, a shopping cart and appointment bookings.

Every profile (one browser, one tab, one test) gets its own session, cart and
bookings, persisted in the configured key-value backend.`,
	SilenceUsage: true,
}

// startCmd represents the start command.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Wellhaven server",
	Long: `Start the Wellhaven edge server on the configured port.
The server will listen for HTTP requests and route them to enabled services.`,
	RunE: runStart,
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Print the version number of Wellhaven.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wellhaven version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./wellhaven.yaml if present)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(packagesCmd)
}

// Execute is the entry point for the CLI. It should be called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
