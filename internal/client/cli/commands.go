package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/credhex/internal/buildinfo"
	"github.com/dmitrijs2005/credhex/internal/common"
	"github.com/dmitrijs2005/credhex/internal/filex"
	"github.com/dmitrijs2005/credhex/internal/netx"
	domain "github.com/dmitrijs2005/credhex/internal/vault"
)

// downloadDir is created under the working directory by "download".
const downloadDir = "downloads"

var downloadFile = netx.DownloadFile

// execute runs one shell line through a fresh command tree.
func (a *App) execute(ctx context.Context, args []string) error {
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.out)
	return root.ExecuteContext(ctx)
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "credhex",
		Short:         "Store and manage your certificates",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		a.newRegisterCommand(),
		a.newLoginCommand(),
		a.newLogoutCommand(),
		a.newWhoamiCommand(),
		a.newListCommand(),
		a.newSearchCommand(),
		a.newUploadCommand(),
		a.newDeleteCommand(),
		a.newURLCommand(),
		a.newOpenCommand(),
		a.newDownloadCommand(),
		a.newRefreshCommand(),
	)
	return root
}

func (a *App) requireUser() error {
	if a.session.Current() == nil {
		return common.ErrNotAuthenticated
	}
	return nil
}

// storedNameArg joins unquoted words with a single space. Names with other
// whitespace have to be quoted.
func storedNameArg(args []string) string {
	return strings.Join(args, " ")
}

func (a *App) newRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := GetSimpleText(a.reader, "Email", a.out)
			if err != nil {
				return err
			}
			password, err := GetPassword("Password", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			confirm, err := GetPassword("Confirm password", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(confirm)

			if string(password) != string(confirm) {
				return common.ErrPasswordMatch
			}

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			if _, err := a.auth.Register(ctx, email, password); err != nil {
				return err
			}
			a.println("Account created. Use 'login' to sign in.")
			return nil
		},
	}
}

func (a *App) newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and load your certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := GetSimpleText(a.reader, "Email", a.out)
			if err != nil {
				return err
			}
			password, err := GetPassword("Password", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			if _, err := a.auth.Login(ctx, email, password); err != nil {
				return err
			}

			a.vault.Reset()
			if err := a.vault.Initialize(ctx); err != nil {
				return err
			}

			u := a.session.Current()
			a.printf("Signed in as %s.\n", u.Email)
			a.printCertificates()
			return nil
		},
	}
}

func (a *App) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			err := a.session.SignOut(ctx)
			a.vault.Reset()
			if err != nil {
				return err
			}
			a.println("Signed out.")
			return nil
		},
	}
}

func (a *App) newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := a.session.Current()
			if u == nil {
				a.println("Not signed in.")
				return nil
			}
			a.printf("%s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
}

func (a *App) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List certificates matching the current search",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			a.printCertificates()
			return nil
		},
	}
}

func (a *App) newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search [term]",
		Short: "Filter certificates by name; no term clears the filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			a.vault.SetSearchTerm(strings.Join(args, " "))
			a.printCertificates()
			return nil
		},
	}
}

func (a *App) newUploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a PDF, JPEG, PNG, DOC or DOCX file up to 10 MB",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}

			f, err := localFile(strings.Join(args, " "))
			if err != nil {
				return err
			}

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			a.println("Uploading...")
			if err := a.vault.Upload(ctx, f); err != nil {
				return err
			}
			a.printf("Uploaded %s (%s).\n", f.Name, FormatSize(f.SizeBytes))
			return nil
		},
	}
}

// localFile reads path into a candidate upload. Files above the size limit
// are not loaded; validation rejects them by size alone.
func localFile(path string) (domain.File, error) {
	lf, err := filex.ReadLimited(path, domain.MaxFileSizeBytes)
	if err != nil {
		return domain.File{}, err
	}
	return domain.File{
		Name:      lf.Name,
		Type:      ContentTypeFor(lf.Name),
		SizeBytes: lf.Size,
		Data:      lf.Data,
	}, nil
}

func (a *App) newDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <storedName>",
		Short: "Delete a certificate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			name := storedNameArg(args)

			if !yes {
				ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s?", domain.OriginalFileName(name)), a.out)
				if err != nil {
					return err
				}
				if !ok {
					a.println("Cancelled.")
					return nil
				}
			}

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			if err := a.vault.Delete(ctx, name); err != nil {
				return err
			}
			a.println("Deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) newURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url <storedName>",
		Short: "Print the public link of a certificate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			a.println(a.vault.PublicURL(storedNameArg(args)))
			return nil
		},
	}
}

func (a *App) newOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <storedName>",
		Short: "Print a temporary download link of a certificate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			url, err := a.vault.DownloadURL(ctx, storedNameArg(args))
			if err != nil {
				return err
			}
			a.println(url)
			return nil
		},
	}
}

func (a *App) newDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download <storedName>",
		Short: "Save a certificate into ./" + downloadDir,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			name := storedNameArg(args)

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			url, err := a.vault.DownloadURL(ctx, name)
			if err != nil {
				return err
			}

			dir, err := filex.EnsureSubdDir(downloadDir)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.Base(domain.OriginalFileName(name)))

			n, err := a.download(ctx, url, path)
			if err != nil {
				return fmt.Errorf("download %s: %w", name, err)
			}
			a.printf("Saved %s (%s).\n", path, FormatSize(n))
			return nil
		},
	}
}

func (a *App) newRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload certificates from storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			if err := a.vault.Refresh(ctx); err != nil {
				return err
			}
			a.printCertificates()
			return nil
		},
	}
}

func (a *App) printCertificates() {
	certs := a.vault.VisibleCertificates()
	term := a.vault.SearchTerm()

	if len(certs) == 0 {
		if term != "" {
			a.printf("No certificates match %q.\n", term)
		} else {
			a.println("No certificates yet. Use 'upload <path>' to add one.")
		}
		return
	}

	if term != "" {
		a.printf("Certificates matching %q (%d):\n", term, len(certs))
	} else {
		a.printf("Your certificates (%d):\n", len(certs))
	}
	for _, c := range certs {
		a.println(FormatCard(c))
	}
}
