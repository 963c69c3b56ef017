package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/credhex/internal/common"
)

func TestRunREPL(t *testing.T) {
	app, _, out := newTestApp(t, "\nwhoami\nbogus\nlist\nexit\nwhoami\n")

	app.runREPL(context.Background())

	s := out.String()
	assert.Contains(t, s, "credhex> ")
	assert.Contains(t, s, "Not signed in.")
	assert.Contains(t, s, `Error: unknown command "bogus"`)
	assert.Contains(t, s, "Error: not signed in, use 'login' or 'register'")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	app, _, out := newTestApp(t, "whoami")

	app.runREPL(context.Background())

	assert.Contains(t, out.String(), "Not signed in.")
	assert.NotContains(t, out.String(), "Bye!")
}

func TestRun_PrintsWelcome(t *testing.T) {
	app, _, out := newTestApp(t, "quit\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome to CredHex")
	assert.Contains(t, out.String(), "Bye!")
}

func TestDescribeError(t *testing.T) {
	assert.Contains(t, describeError(common.ErrTooLarge), "10 MB")
	assert.Contains(t, describeError(fmt.Errorf("put: %w", common.ErrStoreUnavailable)), "unavailable")
	assert.Contains(t, describeError(common.ErrUploadInProgress), "in progress")
	assert.Contains(t, describeError(common.ErrSizeMismatch), "does not match")
	assert.Equal(t, "boom", describeError(errors.New("boom")))
}

func TestRunREPL_QuotedArguments(t *testing.T) {
	app, backend, out := newTestApp(t, "delete -y \"1700000000000_my  cert.pdf\"\nexit\n")
	backend.add("u1/1700000000000_my  cert.pdf", 10)
	backend.add("u1/1700000000000_my cert.pdf", 10)
	signIn(t, app, backend)

	app.runREPL(context.Background())

	assert.Contains(t, out.String(), "Deleted.")
	certs := app.vault.VisibleCertificates()
	if assert.Len(t, certs, 1) {
		assert.Equal(t, "1700000000000_my cert.pdf", certs[0].StoredName)
	}
}

func TestRunREPL_UnbalancedQuote(t *testing.T) {
	app, _, out := newTestApp(t, "delete \"oops\nexit\n")

	app.runREPL(context.Background())

	assert.Contains(t, out.String(), "Error: cannot parse command line")
	assert.Contains(t, out.String(), "Bye!")
}

func TestSplitLine(t *testing.T) {
	parts, err := splitLine("upload 'my  scans/cv.pdf'\n")
	assert.NoError(t, err)
	assert.Equal(t, []string{"upload", "my  scans/cv.pdf"}, parts)

	parts, err = splitLine("  \t\n")
	assert.NoError(t, err)
	assert.Empty(t, parts)
}
