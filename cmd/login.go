package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/validation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd creates the command for logging in to the platform.
func loginCmd() *cobra.Command {
	var sessionOnly bool
	var storeBackend string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the learning platform",
		Long:  "Log in to the learning platform using your account email and password",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Please enter your platform email and password.")
			email := promptForInput("Email: ")
			password := promptForPassword("Password: ")

			if err := validation.ValidateEmail(email); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if password == "" {
				cmd.PrintErrln("Error: Password cannot be empty.")
				return
			}

			api, err := buildClient(cmd, storeBackend)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := api.Login(cmd.Context(), email, password, !sessionOnly); err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Println("Login was successful.")
		},
	}

	cmd.Flags().BoolVarP(&sessionOnly, "session-only", "s", false,
		"Keep the session in memory only, without persisting credentials")
	cmd.Flags().StringVar(&storeBackend, "store", "",
		"Where to keep credentials [keyring, db]; defaults to EDUCLI_CREDENTIAL_STORE or db")

	return cmd
}

// logoutCmd creates the command for ending the current session. The server
// revocation is best-effort; local credentials are cleared regardless.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear stored credentials",
		Run: func(cmd *cobra.Command, args []string) {
			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := api.Logout(cmd.Context()); err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Println("Logged out.")
		},
	}
}

// promptForInput prompts the user for input and returns the trimmed string.
func promptForInput(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println("Error: Failed to read input.")
		os.Exit(1)
	}
	return strings.TrimSpace(input)
}

// promptForPassword prompts the user for a password without echoing it.
func promptForPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println("Error: Failed to read password.")
		os.Exit(1)
	}
	fmt.Println()
	return strings.TrimSpace(string(password))
}
