package cmd

import (
	"fmt"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"github.com/niels/git-sniffer/pkg/config"
	"github.com/niels/git-sniffer/pkg/hook"
	"github.com/niels/git-sniffer/pkg/logging"
	"github.com/niels/git-sniffer/pkg/version"
)

func newInstallCmd(opts *options) *cobra.Command {
	var uninstall, status bool

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install git-sniffer as the repository's pre-commit hook",
		Long: `Adds a git-sniffer section to the repository's pre-commit hook, creating the
hook if needed. Existing hook content outside the section is preserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := opts.reader()
			if err != nil {
				return err
			}
			hooksDir, err := reader.GetHooksDir(opts.dir)
			if err != nil {
				return fmt.Errorf("failed to locate hooks directory: %w", err)
			}

			log := logging.WithComponent("hook")
			out := cmd.OutOrStdout()

			switch {
			case status:
				st, err := hook.GetStatus(opts.deps.Fs, hooksDir)
				if err != nil {
					return err
				}
				if st.Installed {
					fmt.Fprintf(out, "git-sniffer is installed in %s\n", st.Path)
					if st.Unreachable {
						fmt.Fprintf(out, "Warning: an exit command ahead of the git-sniffer section ends the hook before it runs\n")
					}
				} else {
					fmt.Fprintf(out, "git-sniffer is not installed in %s\n", st.Path)
				}
				return nil

			case uninstall:
				found, err := hook.Uninstall(opts.deps.Fs, hooksDir)
				if err != nil {
					return err
				}
				log.Info().Str("hooks_dir", hooksDir).Bool("found", found).Msg("Uninstalled hook")
				if found {
					fmt.Fprintf(out, "Removed git-sniffer from %s\n", hook.Path(hooksDir))
				} else {
					fmt.Fprintf(out, "git-sniffer was not installed in %s\n", hook.Path(hooksDir))
				}
				return nil

			default:
				path, err := hook.Install(opts.deps.Fs, hooksDir, hookCommand(cmd, opts))
				if err != nil {
					return err
				}
				log.Info().Str("path", path).Msg("Installed hook")
				fmt.Fprintf(out, "Installed git-sniffer in %s\n", path)
				return nil
			}
		},
	}

	installCmd.Flags().BoolVar(&uninstall, "uninstall", false, "Remove git-sniffer from the pre-commit hook")
	installCmd.Flags().BoolVar(&status, "status", false, "Report whether the hook is installed")
	installCmd.MarkFlagsMutuallyExclusive("uninstall", "status")

	return installCmd
}

// hookCommand is the shell-quoted command line the hook runs. Flags given at
// install time that change what gets checked are carried over.
func hookCommand(cmd *cobra.Command, opts *options) string {
	args := []string{version.AppName, "check"}
	if f := cmd.Flags().Lookup("config"); f != nil && f.Changed && opts.configPath != config.DefaultConfigFile {
		args = append(args, "--config", opts.configPath)
	}
	if f := cmd.Flags().Lookup("env"); f != nil && f.Changed {
		args = append(args, "--env", opts.environment)
	}
	return shellescape.QuoteCommand(args)
}
