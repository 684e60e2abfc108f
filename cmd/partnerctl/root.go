package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"partnerdash/internal/client"
	"partnerdash/internal/platform/logger"
	"partnerdash/internal/session"
)

var errNotSignedIn = errors.New("not signed in, run 'partnerctl signin' first")

const resolveTimeout = 15 * time.Second

type cli struct {
	apiURL      string
	sessionPath string
	verbose     bool

	in  io.Reader
	out io.Writer

	client *client.Client
	store  *sessionFile
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:           "partnerctl",
		Short:         "Command line client for the partnerdash API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.apiURL, "api", envOr("PARTNERDASH_API_URL", "http://localhost:8080"), "API base URL")
	flags.StringVar(&c.sessionPath, "session-file", envOr("PARTNERDASH_SESSION_FILE", defaultSessionPath()), "where the signed-in session is kept")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log API failures to stderr")

	root.AddCommand(
		c.signUpCmd(),
		c.signInCmd(),
		c.signOutCmd(),
		c.whoAmICmd(),
		c.passwordCmd(),
		c.mfaCmd(),
		c.inviteCmd(),
		c.acceptCmd(),
		c.partnersCmd(),
		c.adminCmd(),
	)
	return root
}

func (c *cli) init() error {
	log := slog.New(slog.DiscardHandler)
	if c.verbose {
		log = logger.NewWithWriter(os.Stderr, "debug")
	}
	c.client = client.New(c.apiURL, client.WithLogger(log))
	c.store = &sessionFile{path: c.sessionPath}
	c.client.Subscribe(func(s *session.Session) {
		if err := c.store.Save(s); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save session: %v\n", err)
		}
	})
	return nil
}

// signedIn restores the saved session and fails when there is none or the
// server no longer accepts it.
func (c *cli) signedIn(ctx context.Context) (*session.Session, error) {
	saved, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, errNotSignedIn
	}
	s, err := c.client.Restore(ctx, saved)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errNotSignedIn
	}
	return s, nil
}

// waitResolved blocks until the resolver has finished its first fetch.
func waitResolved(ctx context.Context, r *session.Resolver) (session.State, error) {
	updates := make(chan struct{}, 1)
	unsubscribe := r.Subscribe(func(session.State) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()
	for {
		state := r.State()
		if !state.Loading {
			return state, nil
		}
		select {
		case <-updates:
		case <-ctx.Done():
			return session.State{}, fmt.Errorf("resolve session: %w", ctx.Err())
		}
	}
}

// password returns flagValue or asks for it. A terminal gets a hidden prompt;
// piped input is read one line at a time.
func (c *cli) password(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, prompt)
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	return c.readLine()
}

func (c *cli) readLine() (string, error) {
	reader, ok := c.in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(c.in)
		c.in = reader
	}
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".partnerctl-session.yaml"
	}
	return filepath.Join(dir, "partnerctl", "session.yaml")
}
