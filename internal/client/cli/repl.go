package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mattn/go-shellwords"

	"github.com/dmitrijs2005/credhex/internal/common"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// runREPL reads one command per line until "exit", "quit" or end of input.
// Lines are split like a shell does, so quoted arguments keep their inner
// whitespace. Errors are printed and the loop goes on.
func (a *App) runREPL(ctx context.Context) {
	for {
		fmt.Fprint(a.out, a.prompt())

		line, err := a.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			a.println("Error:", err)
			return
		}

		parts, perr := splitLine(line)
		if perr != nil {
			a.println("Error:", perr)
		} else if len(parts) > 0 {
			switch parts[0] {
			case "exit", "quit":
				a.println("Bye!")
				return
			}
			if cerr := a.execute(ctx, parts); cerr != nil {
				a.println("Error:", describeError(cerr))
			}
		}

		if err != nil {
			a.println()
			return
		}
	}
}

// splitLine breaks a shell line into arguments honouring quotes and
// backslash escapes.
func splitLine(line string) ([]string, error) {
	parts, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("cannot parse command line: %w", err)
	}
	return parts, nil
}

// describeError turns sentinels into messages fit for the prompt.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidType):
		return "invalid file type, allowed: PDF, JPEG, PNG, DOC, DOCX"
	case errors.Is(err, common.ErrTooLarge):
		return "file too large, the limit is 10 MB"
	case errors.Is(err, common.ErrSizeMismatch):
		return "file size does not match its content, pick the file again"
	case errors.Is(err, common.ErrNotAuthenticated):
		return "not signed in, use 'login' or 'register'"
	case errors.Is(err, common.ErrAlreadyExists):
		return "a certificate with this name was just uploaded, try again"
	case errors.Is(err, common.ErrUploadInProgress):
		return "an upload is already in progress"
	case errors.Is(err, common.ErrStoreUnavailable):
		return "storage is unavailable, try again later"
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthorized, check your credentials or sign in again"
	}
	return err.Error()
}
