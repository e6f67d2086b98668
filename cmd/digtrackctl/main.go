package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	digtrack "github.com/digtrack/digtrack-go"
)

var (
	apiFlag   string
	debugFlag bool
	rootCmd   = &cobra.Command{
		Use:   "digtrackctl",
		Short: "CLI client for the DigTrack 811 ticket service",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "", "Service base URL (defaults to DIGTRACK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log HTTP requests and responses")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newClient builds a client from --api when given, otherwise from the
// DIGTRACK_* environment.
func newClient() (*digtrack.Client, error) {
	if apiFlag != "" {
		return digtrack.New(apiFlag, digtrack.WithDebugLogging(debugFlag))
	}
	return digtrack.NewFromEnv(digtrack.WithDebugLogging(debugFlag))
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}
