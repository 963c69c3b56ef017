package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/credhex/internal/client/client"
	"github.com/dmitrijs2005/credhex/internal/client/config"
	"github.com/dmitrijs2005/credhex/internal/client/session"
	"github.com/dmitrijs2005/credhex/internal/client/vault"
	"github.com/dmitrijs2005/credhex/internal/logging"
)

// Authenticator creates accounts and signs in.
type Authenticator interface {
	Register(ctx context.Context, email string, password []byte) (string, error)
	Login(ctx context.Context, email string, password []byte) (*session.User, error)
}

// Downloader turns a presigned URL into a local file.
type Downloader func(ctx context.Context, url, path string) (int64, error)

type App struct {
	config   *config.Config
	logger   logging.Logger
	auth     Authenticator
	session  *session.Binding
	vault    *vault.Controller
	download Downloader
	closer   io.Closer
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp connects to the server and wires the session and vault controller
// over the same client.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	c, err := client.NewCredHexClient(cfg.ServerEndpointAddr, cfg.PublicBaseURL, cfg.Bucket)
	if err != nil {
		return nil, err
	}

	binding := session.NewBinding(c)
	ctl := vault.NewController(c, binding, logger)

	app := newApp(cfg, logger, c, binding, ctl, os.Stdin, os.Stdout)
	app.closer = c
	return app, nil
}

func newApp(cfg *config.Config, logger logging.Logger, auth Authenticator, binding *session.Binding,
	ctl *vault.Controller, in io.Reader, out io.Writer) *App {
	return &App{
		config:   cfg,
		logger:   logger,
		auth:     auth,
		session:  binding,
		vault:    ctl,
		download: downloadFile,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closer != nil {
			_ = a.closer.Close()
		}
	}()

	a.println("Welcome to CredHex (type 'help' for commands)")
	a.runREPL(ctx)
}

// withTimeout bounds a single command by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) prompt() string {
	s := "credhex"
	if u := a.session.Current(); u != nil {
		s += " (" + u.Email + ")"
	}
	if a.vault.Uploading() {
		s += " [uploading]"
	}
	return s + "> "
}
