package cmd

import (
	"fmt"

	"github.com/notdulain/OAuth-Learning/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "oauth-learning",
	Short: "A small OAuth 2.0 and OpenID Connect playground",
	Long: `oauth-learning runs an OAuth 2.0 authorization server with OpenID Connect
extensions, a resource server that accepts its access tokens, and a demo
client that walks the Authorization Code Flow with PKCE end to end.

Servers are configured through environment variables (or a .env file).`,
	Version: version.String(),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		version.PrintVersion(cmd.OutOrStdout())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(authServerCmd)
	rootCmd.AddCommand(resourceServerCmd)
	rootCmd.AddCommand(demoClientCmd)

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
}
