// Package cli implements the bookctl command tree.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/isdelr/bookfinder-be/internal/client/api"
	"github.com/isdelr/bookfinder-be/internal/client/session"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Options are the process-level inputs of the command tree.
type Options struct {
	In         io.Reader
	Out        io.Writer
	Now        func() time.Time
	HTTPClient *http.Client
	// ReadPassword reads a secret without echo. Defaults to the terminal
	// when stdin is one, otherwise to a plain line read from In.
	ReadPassword func() ([]byte, error)
}

// App is the state shared by one bookctl invocation.
type App struct {
	session *session.Session
	client  *api.Client
	out     io.Writer
	reader  *bufio.Reader
	readPw  func() ([]byte, error)
}

func newApp(opts Options, serverURL, sessionDir string) (*App, error) {
	store, err := session.NewFileStore(sessionDir)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(store, opts.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var clientOpts []api.Option
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(opts.HTTPClient))
	}

	app := &App{
		session: sess,
		client:  api.NewClient(serverURL, sess, clientOpts...),
		out:     opts.Out,
		reader:  bufio.NewReader(opts.In),
		readPw:  opts.ReadPassword,
	}
	if app.readPw == nil {
		app.readPw = app.defaultReadPassword
	}
	return app, nil
}

func (a *App) defaultReadPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(a.out)
		return pw, err
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func (a *App) promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(a.out, prompt)
	return a.readPw()
}

// guard runs the local session check before a protected command. It is
// advisory; the server re-checks every request.
func (a *App) guard(required models.Role) error {
	switch a.session.Check(required) {
	case session.Render:
		return nil
	case session.RedirectHome:
		return fmt.Errorf("%w: this command requires the %s role", session.ErrAccessDenied, required)
	default:
		if a.session.State() == session.Expired {
			return errors.New("session expired, please run 'bookctl login'")
		}
		return errors.New("not logged in, please run 'bookctl login'")
	}
}

// explain rewrites client errors into something a person can act on.
func (a *App) explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrSessionEnded):
		return errors.New("session is no longer valid, please run 'bookctl login'")
	case errors.Is(err, session.ErrAccessDenied):
		return errors.New("access denied for your role")
	default:
		return err
	}
}

func (a *App) success(format string, args ...any) {
	pterm.Fprintln(a.out, pterm.Success.Sprintf(format, args...))
}

func (a *App) info(format string, args ...any) {
	pterm.Fprintln(a.out, pterm.Info.Sprintf(format, args...))
}
