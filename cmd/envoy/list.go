// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"envoy-cli/internal/discovery"
	"envoy-cli/internal/issue"
	"envoy-cli/pkg/bundle"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered commands",
	Long: `List the commands registered across all discovered bundles,
grouped by the bundle that defines them.`,
	RunE: executeList,
}

func executeList(cmd *cobra.Command, _ []string) error {
	disc := discovery.New(cfg)
	bundles := disc.DiscoverAll()

	if len(bundles) == 0 {
		renderIssue(issue.BundleNotFoundId)
		return nil
	}

	out := cmd.OutOrStdout()
	total := 0
	for _, db := range bundles {
		if db.Bundle == nil {
			continue
		}
		fmt.Fprintln(out, TitleStyle.Render(db.Bundle.Name)+SubtitleStyle.Render("  ("+db.Bundle.Root+")"))

		if db.Err != nil {
			fmt.Fprintln(out, "  "+WarningStyle.Render("registry error: ")+db.Err.Error())
			continue
		}
		if db.Registry == nil || db.Registry.Len() == 0 {
			fmt.Fprintln(out, SubtitleStyle.Render("  (no commands registered)"))
			continue
		}

		for _, name := range db.Registry.Names() {
			spec, _ := db.Registry.Get(name)
			fmt.Fprintln(out, "  "+CmdStyle.Render(name)+describeCommand(spec))
			total++
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, SubtitleStyle.Render(fmt.Sprintf("%d command(s) in %d bundle(s)", total, len(bundles))))
	return nil
}

func describeCommand(spec *bundle.CommandSpec) string {
	if spec == nil {
		return ""
	}
	desc := ""
	if spec.Description != "" {
		desc = "  " + SubtitleStyle.Render(spec.Description)
	}
	if len(spec.Alias) > 0 {
		desc += SubtitleStyle.Render("  -> " + strings.Join(spec.Alias, " "))
	}
	return desc
}
