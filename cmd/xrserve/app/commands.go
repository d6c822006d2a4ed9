// Package app provides the entry point for the xRegistry query server
// application.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	v0 "github.com/xregistry-dev/xregistry-server/internal/api/v0"
)

var rootCmd = &cobra.Command{
	Use:               "xrserve",
	DisableAutoGenTag: true,
	Short:             "xRegistry query API server",
	Long: `xRegistry query API server provides REST endpoints for filtered,
sorted, paginated access to registry entity collections.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			slog.Error("Error displaying help", "error", err)
		}
	},
}

// NewRootCmd creates a new root command for the query server
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		slog.Error("Error binding debug flag", "error", err)
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		info := map[string]string{
			"version":    v0.Version,
			"go_version": runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
		}

		format, err := cmd.Flags().GetString("format")
		if err != nil {
			slog.Error("Error retrieving format flag", "error", err)
			return
		}

		if format == "json" {
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				slog.Error("Error marshaling version info", "error", err)
				return
			}
			fmt.Println(string(output))
			return
		}

		fmt.Printf("xrserve %s (%s, %s)\n", info["version"], info["go_version"], info["platform"])
	},
}

func init() {
	versionCmd.Flags().String("format", "text", "Output format (text or json)")
}
