// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"envoy-cli/internal/config"

	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage envoy configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration envoy is actually using: file values merged
over defaults, with environment overrides applied.`,
		RunE: executeConfigShow,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Show where the configuration file lives",
		RunE:  executeConfigPath,
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		RunE:  executeConfigInit,
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func executeConfigShow(cmd *cobra.Command, _ []string) error {
	fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
	return nil
}

func executeConfigPath(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		fmt.Fprintln(cmd.OutOrStdout(), cfgFile)
		return nil
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

func executeConfigInit(cmd *cobra.Command, _ []string) error {
	if err := config.CreateDefaultConfig(); err != nil {
		return err
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ ")+
		"config file at "+CmdStyle.Render(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)))
	return nil
}
