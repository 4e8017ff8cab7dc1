package command

import (
	"fmt"

	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up with a username and email, then trade the mailed confirmation code for a bearer token.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register or request a new confirmation code",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.SignupRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Email, _ = cmd.Flags().GetString("email")

		resp, err := GetAuthenticatedClient().Signup(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Confirmation code sent to %s\n", resp.Email)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for a bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.TokenRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.ConfirmationCode, _ = cmd.Flags().GetString("code")

		resp, err := GetAuthenticatedClient().Token(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("token exchange failed: %w", err)
		}

		// plain output so it can be captured: export YAMDB_TOKEN=$(yamdbctl auth token ...)
		fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile behind --token",
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := GetAuthenticatedClient().Me(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Username: %s\n", me.Username)
		fmt.Fprintf(out, "Email: %s\n", me.Email)
		fmt.Fprintf(out, "Role: %s\n", me.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(signupCmd)
	authCmd.AddCommand(tokenCmd)
	authCmd.AddCommand(whoamiCmd)

	signupCmd.Flags().StringP("username", "u", "", "Username for the account")
	signupCmd.Flags().StringP("email", "e", "", "Email address the code is sent to")
	signupCmd.MarkFlagRequired("username")
	signupCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("username", "u", "", "Username for the account")
	tokenCmd.Flags().StringP("code", "c", "", "Confirmation code from the signup mail")
	tokenCmd.MarkFlagRequired("username")
	tokenCmd.MarkFlagRequired("code")
}
