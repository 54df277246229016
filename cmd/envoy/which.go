// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"envoy-cli/internal/discovery"
	"envoy-cli/internal/environment"
	"envoy-cli/internal/issue"
	"envoy-cli/internal/wrapper"

	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:   "which <command>",
	Short: "Show the executable a command resolves to",
	Long: `Resolve a command's executable against the PATH of its *resolved*
environment and print the absolute path. This is the same lookup 'envoy run'
performs, so it shows exactly what would execute.`,
	Args: cobra.ExactArgs(1),
	RunE: executeWhich,
}

func executeWhich(cmd *cobra.Command, args []string) error {
	disc := discovery.New(cfg)

	spec, err := disc.FindCommand(args[0])
	if err != nil {
		return err
	}

	env, err := environment.NewResolver(cfg.Mode, cfg.Allowlist).ResolveFiles(spec.EnvFilePaths())
	if err != nil {
		return err
	}

	path, err := wrapper.ResolveExecutable(spec.Executable(), env.Value("PATH"))
	if err != nil {
		if errors.Is(err, wrapper.ErrExecutableNotFound) {
			renderIssue(issue.ExecutableNotFoundId)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	if verbose {
		for _, dir := range env.PathList("PATH") {
			fmt.Fprintln(os.Stderr, VerboseStyle.Render("PATH entry: "+dir))
		}
	}
	return nil
}
