package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eshaffer321/agencia-go/internal/partials"
	"github.com/eshaffer321/agencia-go/pkg/agencia"
	"github.com/eshaffer321/agencia-go/pkg/dom"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = os.Getenv("AGENCIA_EMAIL")
			}
			if password == "" {
				password = os.Getenv("AGENCIA_PASSWORD")
			}
			if email == "" {
				return fmt.Errorf("email is required (use --email flag or AGENCIA_EMAIL env var)")
			}
			if password == "" {
				p, err := readPassword(cmd)
				if err != nil {
					return err
				}
				password = p
			}

			user, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, agencia.ErrLoginFailed) {
					return fmt.Errorf("invalid email or password")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Nome, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set AGENCIA_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set AGENCIA_PASSWORD, will prompt if not provided)")

	return cmd
}

// readPassword prompts without echo on a terminal and reads a line otherwise
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or AGENCIA_PASSWORD env var)")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.GetUserSession(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("not signed in, run 'agencia login'")
			}
			return printValue(cmd.OutOrStdout(), user)
		},
	}
}

func newRequestCmd(a *app, method string) *cobra.Command {
	use := method + " <path>"
	args := cobra.ExactArgs(1)
	if method == "post" || method == "put" {
		use += " [json]"
		args = cobra.RangeArgs(1, 2)
	}

	var redirect403 bool
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Send a %s request with the session cookie", strings.ToUpper(method)),
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &agencia.RequestOptions{
				Method:        strings.ToUpper(method),
				RedirectOn403: redirect403,
			}
			if len(args) == 2 {
				opts.Body = args[1]
			}
			v, err := a.client.RequestJSON(cmd.Context(), args[0], opts)
			a.reportNavigation(cmd)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&redirect403, "redirect-403", false, "Go back to the home page on 403")
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	var field string
	var fields []string

	cmd := &cobra.Command{
		Use:   "upload <path> <file>",
		Short: "POST a file as multipart form data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			form := agencia.NewForm().AddFile(field, filepath.Base(args[1]), content)
			for _, kv := range fields {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid field %q, expected name=value", kv)
				}
				form.Set(k, v)
			}

			v, err := a.client.UploadForm(cmd.Context(), args[0], form)
			a.reportNavigation(cmd)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVar(&field, "field", "file", "Form field name of the file")
	cmd.Flags().StringArrayVar(&fields, "set", nil, "Extra form field as name=value (repeatable)")
	return cmd
}

func newNavbarCmd(a *app) *cobra.Command {
	var page string

	cmd := &cobra.Command{
		Use:   "navbar",
		Short: "Render a protected page with its navbar",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := dom.Parse(partials.MustLoad(partials.Page))
			if err != nil {
				return err
			}
			a.navigator.Navigate(page)

			user, err := a.client.BootPage(cmd.Context(), doc)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("not signed in, run 'agencia login'")
			}

			out, err := doc.Render()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&page, "page", agencia.IndexPath, "Page path the navbar is rendered for")
	return cmd
}

// reportNavigation tells the user where the client would have navigated
func (a *app) reportNavigation(cmd *cobra.Command) {
	switch a.navigator.Path() {
	case agencia.LoginPath:
		fmt.Fprintln(cmd.ErrOrStderr(), "Session expired, run 'agencia login'")
	case agencia.IndexPath:
		fmt.Fprintln(cmd.ErrOrStderr(), "Redirected to "+agencia.IndexPath)
	}
}

func printValue(w io.Writer, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(w, val)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
