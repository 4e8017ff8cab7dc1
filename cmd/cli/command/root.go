package command

// root.go defines the root command for yamdbctl and its global flags.

import (
	"fmt"
	"os"

	"yamdb/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var (
	apiURL string // API server URL
	token  string // bearer token from `auth token`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yamdbctl",
	Short: "yamdbctl - yamdb command line interface",
	Long: `yamdbctl talks to the yamdb API and administers its database. With it you can:
- Sign up and exchange a confirmation code for a token
- Browse titles, categories and genres
- Post reviews and comments
- Migrate the schema and manage roles (admin commands, direct database access)

Use "yamdbctl [command] --help" to see the flags of every command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultAPI := os.Getenv("YAMDB_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API server URL (env YAMDB_API)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("YAMDB_TOKEN"), "bearer token (env YAMDB_TOKEN)")
}

// GetAuthenticatedClient returns a client carrying the --token value, if any.
// Without a token the API treats the caller as anonymous.
func GetAuthenticatedClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	if token != "" {
		c.SetToken(token)
	}
	return c
}
