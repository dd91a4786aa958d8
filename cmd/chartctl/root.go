package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"AstroCore/internal/domain/repository"
	"AstroCore/internal/services/ephemeris"
)

var rootCmd = &cobra.Command{
	Use:           "chartctl",
	Short:         "Compute natal, transit and composite charts",
	Long:          "chartctl computes charts with the approximate built-in ephemeris or an external ephemeris service and prints them as JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("ephemeris", "approximate", "ephemeris provider: approximate or http")
	rootCmd.PersistentFlags().String("ephemeris-url", "", "base url of the ephemeris service (with --ephemeris http)")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Second, "calculation timeout")
	rootCmd.PersistentFlags().Bool("compact", false, "print compact JSON")
}

func newEphemeris(cmd *cobra.Command) (repository.Ephemeris, error) {
	provider, _ := cmd.Flags().GetString("ephemeris")
	switch provider {
	case "approximate":
		return ephemeris.NewApproximateEphemeris(), nil
	case "http":
		url, _ := cmd.Flags().GetString("ephemeris-url")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return ephemeris.NewHTTPEphemeris(ephemeris.HTTPConfig{BaseURL: url, Timeout: timeout, Attempts: 2})
	default:
		return nil, fmt.Errorf("unknown ephemeris provider %q", provider)
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if compact, _ := cmd.Flags().GetBool("compact"); !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
