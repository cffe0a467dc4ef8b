// ABOUTME: Session CLI commands
// ABOUTME: Signs in against the feedback API, shows the current user and signs out
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/amanks009/feedback-client/api"
	"github.com/amanks009/feedback-client/session"
)

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
}

// LoginCommand signs in and stores the session at sessionPath.
func LoginCommand(auth Authenticator, sessionPath string, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email (prompted if omitted)")
	password := fs.String("password", "", "Password (prompted if omitted)")
	_ = fs.Parse(args)

	in := bufio.NewReader(stdin)
	if *email == "" {
		_, _ = fmt.Fprint(stdout, "Email: ")
		line, _ := in.ReadString('\n')
		*email = strings.TrimSpace(line)
	}
	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	if *password == "" {
		p, err := readPassword(in)
		if err != nil {
			return err
		}
		*password = p
	}

	res, err := auth.Login(context.Background(), *email, *password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	sess := &session.Session{Token: res.Token, User: res.User, SignedIn: time.Now().UTC()}
	if old, err := session.LoadFrom(sessionPath); err == nil {
		sess.DeviceID = old.DeviceID
	}
	if err := session.SaveTo(sessionPath, sess); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Signed in as %s (%s)\n", res.User.Email, res.User.Role)
	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func readPassword(in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if stdin != os.Stdin || !term.IsTerminal(fd) {
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	_, _ = fmt.Fprint(stdout, "Password: ")
	b, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(stdout)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// LogoutCommand removes the stored session.
func LogoutCommand(sessionPath string) error {
	if err := session.ClearAt(sessionPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, "✓ Signed out")
	return nil
}

// WhoamiCommand prints the signed-in user.
func WhoamiCommand(sessionPath string) error {
	sess, err := session.LoadFrom(sessionPath)
	if errors.Is(err, session.ErrNotSignedIn) {
		_, _ = fmt.Fprintln(stdout, "Not signed in")
		return nil
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "%s <%s>\n", dash(sess.User.Name), dash(sess.User.Email))
	_, _ = fmt.Fprintf(stdout, "  Role: %s\n", dash(string(sess.User.Role)))
	if !sess.SignedIn.IsZero() {
		_, _ = fmt.Fprintf(stdout, "  Signed in: %s\n", sess.SignedIn.Local().Format("2006-01-02 15:04"))
	}
	_, _ = fmt.Fprintf(stdout, "  Device: %s\n", dash(sess.DeviceID))
	return nil
}
