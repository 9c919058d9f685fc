// Package engine builds the argument vectors the automation engine is
// invoked with and interprets what it printed. It never executes
// anything itself; execution belongs to the runner.
package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/runner"
)

// Module names for the device operations. The workspace targets Junos
// gear, matching the inventories this server manages.
const (
	moduleFacts   = "junipernetworks.junos.junos_facts"
	moduleConfig  = "junipernetworks.junos.junos_config"
	moduleCommand = "junipernetworks.junos.junos_command"
	modulePing    = "ping"
)

// Timeouts carries the per-operation wall-clock bounds.
type Timeouts struct {
	Run      time.Duration // playbook run / check
	Validate time.Duration // syntax check
	Adhoc    time.Duration // generic ad-hoc module
	Device   time.Duration // device-facing modules
	Ping     time.Duration
}

// Engine knows the binaries, the inventory path, and the working
// directory every invocation uses.
type Engine struct {
	PlaybookBin string
	AdhocBin    string
	Inventory   string // inventory file path; relative paths resolve against Dir
	Dir         string // workspace root; cwd for every invocation
	Timeouts    Timeouts

	env []string
}

func New(playbookBin, adhocBin, inventory, dir string, timeouts Timeouts) *Engine {
	return &Engine{
		PlaybookBin: playbookBin,
		AdhocBin:    adhocBin,
		Inventory:   inventory,
		Dir:         dir,
		Timeouts:    timeouts,
		// Host-key prompts would hang a headless server, and color
		// codes would corrupt the masked text returned to callers.
		env: append(os.Environ(),
			"ANSIBLE_HOST_KEY_CHECKING=False",
			"ANSIBLE_FORCE_COLOR=false",
		),
	}
}

// PlaybookOptions selects the invocation mode for a playbook command.
// Check and SyntaxCheck are distinguished at the argv level: check mode
// adds --check --diff, syntax check adds --syntax-check, and the two are
// never combined.
type PlaybookOptions struct {
	Check       bool
	SyntaxCheck bool
	Verbose     bool
	Limit       string
	ExtraVars   string
	Tags        string
}

// Playbook builds the ansible-playbook invocation for playbookPath.
func (e *Engine) Playbook(playbookPath string, opts PlaybookOptions) runner.Command {
	argv := []string{e.PlaybookBin, "-i", e.Inventory, playbookPath}
	timeout := e.Timeouts.Run
	switch {
	case opts.SyntaxCheck:
		argv = append(argv, "--syntax-check")
		timeout = e.Timeouts.Validate
	case opts.Check:
		argv = append(argv, "--check", "--diff")
	}
	if opts.Limit != "" {
		argv = append(argv, "--limit", opts.Limit)
	}
	if opts.ExtraVars != "" {
		argv = append(argv, "--extra-vars", opts.ExtraVars)
	}
	if opts.Tags != "" {
		argv = append(argv, "--tags", opts.Tags)
	}
	if opts.Verbose {
		argv = append(argv, "-vvv")
	}
	return e.command(argv, timeout)
}

// Adhoc builds a generic ad-hoc module invocation.
func (e *Engine) Adhoc(target, module, moduleArgs string) runner.Command {
	argv := []string{e.AdhocBin, "-i", e.Inventory, target, "-m", module}
	if moduleArgs != "" {
		argv = append(argv, "-a", moduleArgs)
	}
	return e.command(argv, e.Timeouts.Adhoc)
}

// Ping builds the connectivity test against target.
func (e *Engine) Ping(target string) runner.Command {
	cmd := e.Adhoc(target, modulePing, "")
	cmd.Timeout = e.Timeouts.Ping
	return cmd
}

// Facts gathers device facts, optionally limited to a subset.
func (e *Engine) Facts(target, gatherSubset string) runner.Command {
	args := ""
	if gatherSubset != "" {
		args = "gather_subset=" + gatherSubset
	}
	cmd := e.Adhoc(target, moduleFacts, args)
	cmd.Timeout = e.Timeouts.Device
	return cmd
}

// GetConfig retrieves the running configuration in the given format.
func (e *Engine) GetConfig(target, format string) runner.Command {
	cmd := e.Adhoc(target, moduleConfig, "display="+format)
	cmd.Timeout = e.Timeouts.Device
	return cmd
}

// RunCommands executes operational commands on the target devices. The
// command list is JSON-encoded into the module arguments, never spliced
// into a command line.
func (e *Engine) RunCommands(target string, commands []string) (runner.Command, error) {
	encoded, err := json.Marshal(commands)
	if err != nil {
		return runner.Command{}, fmt.Errorf("encode commands: %w", err)
	}
	cmd := e.Adhoc(target, moduleCommand, "commands="+string(encoded))
	cmd.Timeout = e.Timeouts.Device
	return cmd, nil
}

// PushConfig merges configuration lines onto the target devices.
func (e *Engine) PushConfig(target string, lines []string, commit, check bool) (runner.Command, error) {
	encoded, err := json.Marshal(lines)
	if err != nil {
		return runner.Command{}, fmt.Errorf("encode config lines: %w", err)
	}
	commitFlag := "no"
	if commit {
		commitFlag = "yes"
	}
	args := fmt.Sprintf("lines=%s update=merge commit=%s", encoded, commitFlag)
	cmd := e.Adhoc(target, moduleConfig, args)
	cmd.Timeout = e.Timeouts.Device
	if check {
		cmd.Argv = append(cmd.Argv, "--check")
	}
	return cmd, nil
}

func (e *Engine) command(argv []string, timeout time.Duration) runner.Command {
	return runner.Command{
		Argv:    argv,
		Dir:     e.Dir,
		Env:     e.env,
		Timeout: timeout,
	}
}

// FormatResult renders a Result the way callers see raw engine output.
func FormatResult(res runner.Result) string {
	if res.TimedOut {
		return "ERROR: Command timed out."
	}
	var parts []string
	if res.Stdout != "" {
		parts = append(parts, "=== OUTPUT ===\n"+res.Stdout)
	}
	if res.Stderr != "" {
		parts = append(parts, "=== STDERR ===\n"+res.Stderr)
	}
	if res.ExitCode != 0 {
		parts = append(parts, fmt.Sprintf("\n=== RETURN CODE: %d ===", res.ExitCode))
	}
	if len(parts) == 0 {
		return "Command completed with no output."
	}
	return strings.Join(parts, "\n")
}

// Summarize pulls the PLAY RECAP block and any fatal/failed/changed
// lines to the front of playbook output, keeping the full text below.
func Summarize(raw string) string {
	var summary []string
	inRecap := false
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(line, "PLAY RECAP"):
			inRecap = true
			summary = append(summary, line)
		case inRecap:
			summary = append(summary, line)
		case strings.Contains(lower, "fatal:") || strings.Contains(lower, "failed:"):
			summary = append(summary, line)
		case strings.Contains(lower, "changed:") && !strings.Contains(lower, "ok="):
			summary = append(summary, line)
		}
	}
	if len(summary) == 0 {
		return raw
	}
	return "=== SUMMARY ===\n" + strings.Join(summary, "\n") + "\n\n=== FULL OUTPUT ===\n" + raw
}

// PingSummary prefixes ping output with reachable/unreachable counts.
func PingSummary(raw string) string {
	reachable := strings.Count(raw, "SUCCESS")
	failed := strings.Count(raw, "UNREACHABLE") + strings.Count(raw, "FAILED")
	return fmt.Sprintf("=== CONNECTIVITY ===\nReachable: %d\nFailed: %d\n\n%s",
		reachable, failed, raw)
}

// Status classifies an engine result for the calling store.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusTimedOut
)

// Classify maps a Result to a Status. Exit-code meaning is the engine's;
// here anything non-zero that did not time out is a failure the caller
// reports with the captured diagnostics.
func Classify(res runner.Result) Status {
	switch {
	case res.TimedOut:
		return StatusTimedOut
	case res.ExitCode != 0:
		return StatusFailed
	default:
		return StatusOK
	}
}
