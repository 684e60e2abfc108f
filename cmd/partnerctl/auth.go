package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"partnerdash/internal/guard"
	"partnerdash/internal/session"
)

func (c *cli) signUpCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account; it stays pending until an invitation is accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password, "Password: ")
			if err != nil {
				return err
			}
			user, err := c.client.SignUp(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Account created for %s (%s)\n", user.Email, user.ID)
			fmt.Fprintln(c.out, "Sign in, then accept your invitation to get access.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) signInCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password, "Password: ")
			if err != nil {
				return err
			}
			s, err := c.client.SignIn(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Signed in as %s\n", s.User.Email)

			state, err := c.client.State(cmd.Context(), guard.PathHome)
			if err != nil {
				return err
			}
			printNextStep(c, state.Decision, state.Redirect)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the session on the server and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				if errors.Is(err, errNotSignedIn) {
					fmt.Fprintln(c.out, "Already signed out.")
					return nil
				}
				return err
			}
			if err := c.client.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoAmICmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user, role and MFA standing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			resolver := session.NewResolver(c.client, c.client)
			defer resolver.Close()
			state, err := waitResolved(cmd.Context(), resolver)
			if err != nil {
				return err
			}

			// Verification lives on the server-side session record; a fresh
			// process only learns about it from there.
			server, err := c.client.State(cmd.Context(), path)
			if err != nil {
				return err
			}
			if server.MFAVerified {
				resolver.MarkMFAVerified()
				state = resolver.State()
			}

			role := state.Role
			if role == "" {
				role = "pending approval"
			}
			fmt.Fprintf(c.out, "User:          %s (%s)\n", state.User.Email, state.User.ID)
			fmt.Fprintf(c.out, "Role:          %s\n", role)
			fmt.Fprintf(c.out, "MFA enrolled:  %t\n", state.MFAConfigured)
			fmt.Fprintf(c.out, "MFA verified:  %t\n", state.MFAVerified)
			fmt.Fprintf(c.out, "Session ends:  %s\n", state.Session.ExpiresAt.Local().Format("2006-01-02 15:04"))

			decide := guard.Decide
			if path == "/admin" || strings.HasPrefix(path, "/admin/") {
				decide = guard.DecideAdmin
			}
			d := decide(state.AuthState(), path)
			if d.Allowed() {
				fmt.Fprintf(c.out, "Access to %s: granted\n", path)
				return nil
			}
			fmt.Fprintf(c.out, "Access to %s: %s\n", path, d.Outcome)
			printNextStep(c, d.Outcome, d.Redirect)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", guard.PathHome, "view to evaluate access for")
	return cmd
}

func (c *cli) passwordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			current, err := c.password("", "Current password: ")
			if err != nil {
				return err
			}
			next, err := c.password("", "New password: ")
			if err != nil {
				return err
			}
			if err := c.client.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Password changed.")
			return nil
		},
	}
}

func printNextStep(c *cli, decision guard.Outcome, redirect string) {
	switch {
	case decision == guard.OutcomePendingApproval:
		fmt.Fprintln(c.out, "Your account is waiting for approval: run 'partnerctl accept TOKEN' with your invitation.")
	case redirect == guard.PathMFASetup:
		fmt.Fprintln(c.out, "Two-factor authentication is required: run 'partnerctl mfa setup totp' or 'partnerctl mfa setup email'.")
	case redirect == guard.PathMFAVerify:
		fmt.Fprintln(c.out, "Verify this session: run 'partnerctl mfa verify CODE'.")
	case redirect == guard.PathHome:
		fmt.Fprintln(c.out, "This view is for admins only.")
	}
}
