package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/agencia-go/internal/config"
	"github.com/eshaffer321/agencia-go/internal/logger"
	"github.com/eshaffer321/agencia-go/pkg/agencia"
)

var version = "dev" // Will be set during build

// app carries what every command needs once the root has run
type app struct {
	cfg       *config.Config
	client    *agencia.Client
	navigator *agencia.MemoryNavigator

	baseURL     string
	sessionFile string
	yes         bool

	closed bool
}

// newRoot builds the command tree and the state its commands share
func newRoot() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "agencia",
		Short: "Agencia - travel agency console client",
		Long: `Agencia CLI - talk to the travel agency API from a terminal.

Sign in once with 'agencia login'; the session cookie is kept in a local
session file and reused by every other command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "API base URL (or set AGENCIA_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&a.sessionFile, "session-file", "", "Session file (or set AGENCIA_SESSION_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "Answer yes to every confirmation")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agencia version %s\n", version)
		},
	})

	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newLogoutCmd(a))
	rootCmd.AddCommand(newMeCmd(a))
	for _, method := range []string{"get", "post", "put", "delete"} {
		rootCmd.AddCommand(newRequestCmd(a, method))
	}
	rootCmd.AddCommand(newUploadCmd(a))
	rootCmd.AddCommand(newNavbarCmd(a))

	return rootCmd, a
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.baseURL != "" {
		cfg.API.BaseURL = a.baseURL
	}
	if a.sessionFile != "" {
		cfg.API.SessionFile = a.sessionFile
	}
	a.cfg = cfg

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	a.navigator = agencia.NewMemoryNavigator("/")
	client, err := agencia.NewClient(&agencia.ClientOptions{
		BaseURL:     cfg.API.BaseURL,
		SessionFile: cfg.API.SessionFile,
		Navigator:   a.navigator,
		Notifier:    agencia.NewTerminalNotifier(cmd.InOrStdin(), cmd.ErrOrStderr(), a.yes),
		Logger:      agencia.NewZerologLogger(logger.GetLogger()),
		SentryDSN:   cfg.SentryDSN,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	a.client = client
	return nil
}

// close flushes Sentry and releases connections. It runs after every
// command, failed ones included.
func (a *app) close() {
	if a.client != nil {
		a.client.Close()
		a.client = nil
		a.closed = true
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd, a := newRoot()
	return run(a, rootCmd, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(a *app, rootCmd *cobra.Command, args []string, in io.Reader, out, errOut io.Writer) error {
	defer a.close()

	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return err
	}
	return nil
}
