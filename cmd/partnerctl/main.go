// Command partnerctl drives the partnerdash API from a terminal: sign-in with
// MFA, invitations, user administration and the partner report.
package main

import (
	"fmt"
	"os"

	"partnerdash/internal/errmsg"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Translate(err.Error()))
		os.Exit(1)
	}
}
