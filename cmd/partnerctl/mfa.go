package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) mfaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mfa",
		Short: "Enroll and verify the second factor",
	}
	cmd.AddCommand(c.mfaSetupCmd(), c.mfaConfirmCmd(), c.mfaSendCmd(), c.mfaVerifyCmd())
	return cmd
}

func (c *cli) mfaSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "setup totp|email",
		Short:     "Start enrolling an authenticator app or email codes",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"totp", "email"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			switch args[0] {
			case "totp":
				setup, err := c.client.BeginTOTPSetup(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Secret: %s\n", setup.Secret)
				fmt.Fprintf(c.out, "URI:    %s\n", setup.OTPAuthURI)
				fmt.Fprintln(c.out, "Add it to your authenticator, then run 'partnerctl mfa confirm CODE'.")
			case "email":
				if err := c.client.BeginEmailSetup(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "A code was emailed to you. Run 'partnerctl mfa confirm CODE'.")
			default:
				return fmt.Errorf("unknown MFA type %q", args[0])
			}
			return nil
		},
	}
}

func (c *cli) mfaConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm CODE",
		Short: "Finish enrollment with a code from the new factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			result, err := c.client.ConfirmSetup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !result.Verified {
				return fmt.Errorf("%s", result.Error)
			}
			fmt.Fprintln(c.out, "Two-factor authentication is active.")
			return nil
		},
	}
}

func (c *cli) mfaSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Email a fresh sign-in code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			if err := c.client.SendCode(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Code sent.")
			return nil
		},
	}
}

func (c *cli) mfaVerifyCmd() *cobra.Command {
	var mfaType string
	cmd := &cobra.Command{
		Use:   "verify CODE",
		Short: "Verify the current session with a second-factor code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			if mfaType == "" {
				info, err := c.client.MFAInfo(cmd.Context())
				if err != nil {
					return err
				}
				if info == nil {
					return fmt.Errorf("no second factor enrolled, run 'partnerctl mfa setup' first")
				}
				mfaType = info.Type
			}

			result, err := c.client.VerifyCode(cmd.Context(), args[0], mfaType)
			if err != nil {
				return err
			}
			if !result.Verified {
				return fmt.Errorf("%s", result.Error)
			}
			fmt.Fprintln(c.out, "Session verified.")
			return nil
		},
	}
	cmd.Flags().StringVar(&mfaType, "type", "", "totp or email (defaults to the enrolled factor)")
	return cmd
}
