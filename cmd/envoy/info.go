// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"envoy-cli/internal/discovery"
	"envoy-cli/internal/environment"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <command>",
	Short: "Show details about a registered command",
	Long: `Show the bundle, executable, env files and resolved environment of a
registered command without running it.`,
	Args: cobra.ExactArgs(1),
	RunE: executeInfo,
}

func executeInfo(cmd *cobra.Command, args []string) error {
	disc := discovery.New(cfg)

	spec, err := disc.FindCommand(args[0])
	if err != nil {
		return err
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", spec.Name)
	if spec.Description != "" {
		fmt.Fprintf(&md, "%s\n\n", spec.Description)
	}
	fmt.Fprintf(&md, "- **Bundle:** `%s`\n", spec.Bundle)
	fmt.Fprintf(&md, "- **Executable:** `%s`\n", spec.Executable())
	if baseArgs := spec.BaseArgs(); len(baseArgs) > 0 {
		fmt.Fprintf(&md, "- **Base arguments:** `%s`\n", strings.Join(baseArgs, " "))
	}

	files := spec.EnvFilePaths()
	if len(files) > 0 {
		md.WriteString("\n## Env files (applied in order)\n\n")
		for i, path := range files {
			fmt.Fprintf(&md, "%d. `%s`\n", i+1, path)
		}
	}

	if env, err := environment.NewResolver(cfg.Mode, cfg.Allowlist).ResolveFiles(files); err == nil {
		fmt.Fprintf(&md, "\n## Resolved environment (%s mode, %d variables)\n\n", cfg.Mode, env.Len())
		for _, name := range env.Names() {
			fmt.Fprintf(&md, "- `%s`\n", name)
		}
	} else {
		fmt.Fprintf(&md, "\n## Resolved environment\n\nResolution failed: %s\n", err)
	}

	rendered, err := glamour.Render(md.String(), "auto")
	if err != nil {
		// Fall back to the raw markdown rather than losing the output.
		fmt.Fprintln(cmd.OutOrStdout(), md.String())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return nil
}
