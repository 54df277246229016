// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	EnvFileNotFoundId Id = iota + 1
	EnvFileParseErrorId
	CommandNotFoundId
	BundleNotFoundId
	ExecutableNotFoundId
	ExecutionFailedId
	ExecutionTimedOutId
	ConfigLoadFailedId
	InvalidEnvModeId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links into the project docs, empty until pages exist
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	envFileNotFoundIssue = &Issue{
		id: EnvFileNotFoundId,
		mdMsg: `
# Env file not found!

A command references an env file that does not exist in the bundle's
envoy_env/ directory.

## Things you can try:
- Check the 'environment' list for the command in commands.json
- List the env files that actually exist:
~~~
$ ls <bundle>/envoy_env/
~~~

- Create the missing file (a plain JSON object):
~~~json
{
  "APP_HOME": "{$HOME}/app",
  "+=PATH": "{$APP_HOME}/bin"
}
~~~`,
	}

	envFileParseErrorIssue = &Issue{
		id: EnvFileParseErrorId,
		mdMsg: `
# Failed to parse env file!

Env files must contain a single JSON object mapping variable names to
string, number, boolean, null, or list values.

## Common issues:
- Trailing commas (JSON forbids them)
- Nested objects as values (only scalars and flat lists are allowed)
- Unquoted keys or values

## Operator prefixes:
- ` + "`\"NAME\": ...`" + ` assigns
- ` + "`\"+=NAME\": ...`" + ` appends to the current value
- ` + "`\"^=NAME\": ...`" + ` prepends to the current value`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

The requested command is not registered in any discovered bundle.

## Things you can try:
- List all registered commands:
~~~
$ envoy list
~~~

- Check that the bundle's envoy_env/commands.json declares the command
- Check your configured bundle roots:
~~~
$ envoy config show
~~~`,
	}

	bundleNotFoundIssue = &Issue{
		id: BundleNotFoundId,
		mdMsg: `
# No bundles found!

No directory with an envoy_env/ subdirectory was found under the
configured bundle roots.

## Things you can try:
- Add a bundle root to your config:
~~~cue
bundle_roots: ["/home/me/work"]
~~~

- Or set it for one invocation:
~~~
$ ENVOY_BUNDLE_ROOTS=/home/me/work envoy list
~~~

- Create a bundle by adding an envoy_env/ directory with a commands.json
  to any project`,
	}

	executableNotFoundIssue = &Issue{
		id: ExecutableNotFoundId,
		mdMsg: `
# Executable not found!

The command's executable could not be located on the PATH of the
*resolved* environment. Note that in closed mode the PATH from your
interactive shell is not inherited.

## Things you can try:
- Inspect the PATH the command would actually see:
~~~
$ envoy which <command>
~~~

- Declare PATH (or extend it) in an env file:
~~~json
{ "+=PATH": "/opt/tools/bin" }
~~~

- Or allow PATH through from the parent process:
~~~
$ ENVOY_ALLOWLIST=PATH envoy run <command>
~~~`,
	}

	executionFailedIssue = &Issue{
		id: ExecutionFailedId,
		mdMsg: `
# Command failed!

The child process exited with a nonzero status.

## Things you can try:
- Re-run with verbose output to see the full environment and timings:
~~~
$ envoy --verbose run <command>
~~~

- Run the executable directly with the resolved environment to isolate
  the failure
- Check the command's working directory and arguments in commands.json`,
	}

	executionTimedOutIssue = &Issue{
		id: ExecutionTimedOutId,
		mdMsg: `
# Command timed out!

The child process exceeded its timeout. It was asked to terminate
gracefully and then killed after the grace period.

## Things you can try:
- Raise or remove the timeout for this invocation
- Raise the grace period in your config if the process needs longer to
  shut down cleanly:
~~~cue
grace_period_seconds: 30
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file exists but couldn't be loaded.

## Common issues:
- Invalid CUE syntax
- Unknown field names
- Invalid values (e.g. a negative grace period)

## Things you can try:
- Show the config path and what envoy currently sees:
~~~
$ envoy config path
$ envoy config show
~~~

- Validate your edits against the defaults before saving`,
	}

	invalidEnvModeIssue = &Issue{
		id: InvalidEnvModeId,
		mdMsg: `
# Invalid environment mode!

The environment mode must be either "closed" or "inherited".

- **closed** (default): child processes see only the variables declared
  in env files, a minimal core set, and anything allowlisted
- **inherited**: the parent process environment is the starting point
  and env files layer on top

## Things you can try:
~~~cue
mode: "closed"
~~~
or for one invocation:
~~~
$ ENVOY_INHERIT_ENV=1 envoy run <command>
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The command's executable is not marked executable
- The working directory is not readable
- The config directory is not writable

## Things you can try:
- Check file permissions:
~~~
$ chmod +x <executable>
~~~

- Run envoy from a directory you own`,
	}

	issues = map[Id]*Issue{
		envFileNotFoundIssue.Id():    envFileNotFoundIssue,
		envFileParseErrorIssue.Id():  envFileParseErrorIssue,
		commandNotFoundIssue.Id():    commandNotFoundIssue,
		bundleNotFoundIssue.Id():     bundleNotFoundIssue,
		executableNotFoundIssue.Id(): executableNotFoundIssue,
		executionFailedIssue.Id():    executionFailedIssue,
		executionTimedOutIssue.Id():  executionTimedOutIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		invalidEnvModeIssue.Id():     invalidEnvModeIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
