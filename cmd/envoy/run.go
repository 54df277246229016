// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"envoy-cli/internal/discovery"
	"envoy-cli/internal/environment"
	"envoy-cli/internal/issue"
	"envoy-cli/internal/wrapper"

	"github.com/spf13/cobra"
)

var (
	runTimeout  time.Duration
	runWorkDir  string
	runShell    bool
	runTTY      bool
	runInherit  bool
	runAllow    []string
	runEnvFiles []string

	runCmd = &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run a registered command in its resolved environment",
		Long: `Run a command registered in a bundle's commands.json.

The command's env files are resolved into a fresh environment and the
executable is looked up on that environment's PATH, not the parent's.
Extra arguments after the command name are passed through to the child.`,
		Args: cobra.MinimumNArgs(1),
		RunE: executeRun,
	}
)

func init() {
	runCmd.Flags().DurationVarP(&runTimeout, "timeout", "t", 0, "kill the command after this duration (0 = no timeout)")
	runCmd.Flags().StringVarP(&runWorkDir, "workdir", "w", "", "working directory for the command (default: bundle root)")
	runCmd.Flags().BoolVar(&runShell, "shell", false, "interpret the command line with the embedded shell")
	runCmd.Flags().BoolVarP(&runTTY, "tty", "T", false, "attach the command to a pseudo-terminal")
	runCmd.Flags().BoolVar(&runInherit, "inherit", false, "seed the environment from the parent process")
	runCmd.Flags().StringArrayVar(&runAllow, "allow", nil, "let a parent variable through in closed mode (repeatable)")
	runCmd.Flags().StringArrayVarP(&runEnvFiles, "env-file", "e", nil, "additional env files layered after the command's own (repeatable)")
}

func executeRun(cmd *cobra.Command, args []string) error {
	disc := discovery.New(cfg)

	spec, err := disc.FindCommand(args[0])
	if err != nil {
		if errors.Is(err, discovery.ErrCommandNotFound) {
			renderIssue(issue.CommandNotFoundId)
		}
		return err
	}

	mode := cfg.Mode
	if runInherit {
		mode = environment.ModeInherited
	}

	allowlist := append(append([]string(nil), cfg.Allowlist...), runAllow...)

	files := append(spec.EnvFilePaths(), runEnvFiles...)
	env, err := environment.NewResolver(mode, allowlist).ResolveFiles(files)
	if err != nil {
		renderIssue(issue.EnvFileParseErrorId)
		return err
	}

	if verbose {
		fmt.Fprintln(os.Stderr, VerboseStyle.Render(
			fmt.Sprintf("resolved %d variable(s) in %s mode from %d file(s)", env.Len(), mode, len(files))))
	}

	workDir := runWorkDir
	if workDir == "" {
		// Default to the bundle root, the directory the env files anchor to.
		workDir = filepath.Dir(spec.EnvDir)
	}

	wcfg := wrapper.NewConfig(spec.Executable(), append(spec.BaseArgs(), args[1:]...)...)
	wcfg.WorkDir = workDir
	wcfg.Timeout = runTimeout
	wcfg.GracePeriod = cfg.GracePeriod()
	wcfg.Shell = runShell
	wcfg.Interactive = runTTY
	wcfg.Stdin = os.Stdin

	res, err := wrapper.Run(cmd.Context(), wcfg, env)
	if err != nil {
		var execErr *wrapper.ExecutionError
		switch {
		case errors.Is(err, wrapper.ErrExecutableNotFound):
			renderIssue(issue.ExecutableNotFoundId)
			return err
		case errors.As(err, &execErr):
			if execErr.Result != nil && execErr.Result.TimedOut {
				renderIssue(issue.ExecutionTimedOutId)
			}
			return &ExitError{Code: exitCodeFor(execErr.Result), Err: err}
		default:
			return err
		}
	}

	if verbose && res != nil {
		fmt.Fprintln(os.Stderr, VerboseStyle.Render(res.String()))
	}
	return nil
}

// exitCodeFor maps a result to the process exit code: the child's own code
// when it ran, a generic failure otherwise. Sentinel codes must not leak as
// negative exit values.
func exitCodeFor(res *wrapper.Result) int {
	if res == nil || res.ReturnCode < 0 {
		return 1
	}
	return res.ReturnCode
}

// renderIssue prints the catalog page for id to stderr, falling back to
// nothing if rendering fails (the error itself still gets printed by cobra).
func renderIssue(id issue.Id) {
	page := issue.Get(id)
	if page == nil {
		return
	}
	out, err := page.Render("auto")
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, out)
}
