package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/niels/git-sniffer/pkg/config"
	"github.com/niels/git-sniffer/pkg/git"
	"github.com/niels/git-sniffer/pkg/logging"
	"github.com/niels/git-sniffer/pkg/output"
	"github.com/niels/git-sniffer/pkg/runner"
	"github.com/niels/git-sniffer/pkg/version"
)

// Environment variables consulted for the running environment, in order
var environmentVars = []string{"GIT_SNIFFER_ENV", "APP_ENV"}

// Dependencies are the collaborators the commands run against.
// Nil fields are replaced with the production implementations.
type Dependencies struct {
	Reader git.SnapshotReader
	Runner runner.Runner
	Fs     afero.Fs
	Getwd  func() (string, error)
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Runner == nil {
		d.Runner = runner.NewExecRunner()
	}
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Getwd == nil {
		d.Getwd = os.Getwd
	}
	return d
}

// options holds the flag values shared by all commands
type options struct {
	configPath  string
	environment string
	debug       bool
	verbose     bool
	noColor     bool
	showVersion bool

	cfg  *config.Config
	dir  string
	deps Dependencies
}

// reader returns the configured snapshot reader
func (o *options) reader() (git.SnapshotReader, error) {
	if o.deps.Reader != nil {
		return o.deps.Reader, nil
	}
	return git.NewSnapshotReader(o.cfg, o.deps.Runner)
}

func (o *options) useColor(w io.Writer) bool {
	return !o.noColor && output.SupportsColor(w)
}

// NewRootCmd creates the root command for git-sniffer
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(Dependencies{})
}

// NewRootCmdWithDeps creates the root command with custom dependencies.
// This is primarily used for testing.
func NewRootCmdWithDeps(deps Dependencies) *cobra.Command {
	opts := &options{deps: deps.withDefaults()}

	rootCmd := &cobra.Command{
		Use:   version.AppName,
		Short: version.Description,
		Long: fmt.Sprintf(`%s - %s

Checks the content staged for commit, never the working tree. Staged files are
copied into a scratch directory and PHP_CodeSniffer and ESLint run against the
copies. Any tool output rejects the commit.

Run without a subcommand to check the staged files.
`, version.AppName, version.Description),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
				return nil
			}
			return runCheck(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFile, "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&opts.environment, "env", "e", defaultEnvironment(), "Running environment, compared with the env from the configuration")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.noColor, "no-color", "", false, "Disable colored output")
	rootCmd.Flags().BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")

	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newInstallCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup resolves the repository root, loads the configuration and
// initializes the logger
func (o *options) setup(cmd *cobra.Command) error {
	cwd, err := o.deps.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	dir, err := o.repositoryRoot(cwd)
	if err != nil {
		return err
	}
	o.dir = dir

	configPath := config.Resolve(dir, o.configPath)
	cfg, found, err := loadConfig(o.deps.Fs, configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	logging.InitGlobalLogger(o.debug, cfg)
	// one id per invocation so runs can be told apart in a shared log file
	logging.SetLogger(logging.GetLogger().With().Str("run_id", uuid.NewString()).Logger())
	logging.InfoWith("Initializing git-sniffer", map[string]interface{}{
		"command":     cmd.Name(),
		"dir":         dir,
		"environment": o.environment,
	})
	if !found {
		logging.WarnWith("Configuration file not found, using defaults", map[string]interface{}{
			"path": configPath,
		})
	}
	if o.debug {
		logging.Debug("Debug logging enabled")
	}
	return nil
}

// repositoryRoot returns the top of the working tree containing cwd.
// Outside a repository cwd is used as is.
func (o *options) repositoryRoot(cwd string) (string, error) {
	var root string
	var err error
	if o.deps.Reader != nil {
		root, err = o.deps.Reader.GetRepositoryRoot(cwd)
	} else {
		root, err = git.RepositoryRoot(cwd, o.deps.Runner)
	}
	if errors.Is(err, git.ErrNotGitRepository) {
		return cwd, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to locate repository root: %w", err)
	}
	return root, nil
}

// loadConfig reads the configuration file. A missing file falls back to the
// defaults and reports found as false; a file that exists but cannot be used
// is an error.
func loadConfig(fsys afero.Fs, path string) (cfg *config.Config, found bool, err error) {
	cfg, err = config.Load(fsys, path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return config.DefaultFromEnv(), false, nil
	}
	return nil, false, fmt.Errorf("invalid configuration %s: %w", path, err)
}

func defaultEnvironment() string {
	for _, name := range environmentVars {
		if env := os.Getenv(name); env != "" {
			return env
		}
	}
	return "local"
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
