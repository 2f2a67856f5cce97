package cli

import (
	"fmt"
	"time"

	"github.com/isdelr/bookfinder-be/internal/client/api"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newRegisterCmd(app func() *App) *cobra.Command {
	var req api.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long: `Creates an account on the BookFinder server. Roles are BookRecommender
(may curate the catalog) and BookReader (read-only). Registration does not log in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			pw, err := a.promptPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			req.Password = string(pw)
			clear(pw)
			req.Role = models.Role(role)

			user, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return a.explain(err)
			}
			a.success("Registered %s as %s. Run 'bookctl login' to sign in.", user.Username, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.MobileNumber, "mobile", "", "10-digit mobile number")
	cmd.Flags().StringVar(&role, "role", string(models.RoleReader), "BookRecommender or BookReader")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("mobile")
	return cmd
}

func newLoginCmd(app func() *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			pw, err := a.promptPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			resp, err := a.client.Login(cmd.Context(), email, string(pw))
			clear(pw)
			if err != nil {
				return a.explain(err)
			}
			a.success("Welcome, %s (%s).", resp.User.Username, resp.User.Role)
			a.info("Session expires at %s", resp.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.session.End(); err != nil {
				return err
			}
			a.success("Logged out.")
			return nil
		},
	}
}

func newStatusCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Display authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.guard(models.RoleAny); err != nil {
				return err
			}
			pterm.Fprintln(a.out, pterm.DefaultSection.Sprint("Authentication Status"))
			a.info("User: %s", a.session.Username())
			a.info("Role: %s", a.session.Role())
			a.info("Token expires at: %s", a.session.ExpiresAt().Local().Format(time.RFC1123))
			return nil
		},
	}
}
