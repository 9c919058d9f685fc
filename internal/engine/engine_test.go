package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/runner"
)

func testEngine() *Engine {
	return New("ansible-playbook", "ansible", "/ws/inventory/hosts.ini", "/ws", Timeouts{
		Run:      300 * time.Second,
		Validate: 60 * time.Second,
		Adhoc:    120 * time.Second,
		Device:   180 * time.Second,
		Ping:     120 * time.Second,
	})
}

func hasArg(argv []string, arg string) bool {
	for _, a := range argv {
		if a == arg {
			return true
		}
	}
	return false
}

func TestPlaybook_NormalMode(t *testing.T) {
	e := testEngine()

	cmd := e.Playbook("/ws/playbooks/site.yml", PlaybookOptions{})

	want := []string{"ansible-playbook", "-i", "/ws/inventory/hosts.ini", "/ws/playbooks/site.yml"}
	if strings.Join(cmd.Argv, " ") != strings.Join(want, " ") {
		t.Errorf("Argv = %v, want %v", cmd.Argv, want)
	}
	if cmd.Timeout != 300*time.Second {
		t.Errorf("Timeout = %v, want 300s", cmd.Timeout)
	}
	if cmd.Dir != "/ws" {
		t.Errorf("Dir = %q, want /ws", cmd.Dir)
	}
}

func TestPlaybook_CheckMode(t *testing.T) {
	e := testEngine()

	cmd := e.Playbook("/ws/playbooks/site.yml", PlaybookOptions{Check: true, Limit: "qfx_switches"})

	if !hasArg(cmd.Argv, "--check") || !hasArg(cmd.Argv, "--diff") {
		t.Errorf("check mode argv missing --check/--diff: %v", cmd.Argv)
	}
	if hasArg(cmd.Argv, "--syntax-check") {
		t.Errorf("check mode argv must not contain --syntax-check: %v", cmd.Argv)
	}
	if !hasArg(cmd.Argv, "--limit") || !hasArg(cmd.Argv, "qfx_switches") {
		t.Errorf("argv missing limit: %v", cmd.Argv)
	}
}

func TestPlaybook_SyntaxCheckWinsOverCheck(t *testing.T) {
	e := testEngine()

	cmd := e.Playbook("/ws/playbooks/site.yml", PlaybookOptions{SyntaxCheck: true, Check: true})

	if !hasArg(cmd.Argv, "--syntax-check") {
		t.Errorf("argv missing --syntax-check: %v", cmd.Argv)
	}
	if hasArg(cmd.Argv, "--check") {
		t.Errorf("syntax check argv must not contain --check: %v", cmd.Argv)
	}
	if cmd.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want validate timeout", cmd.Timeout)
	}
}

func TestPlaybook_ExtraVarsTagsVerbose(t *testing.T) {
	e := testEngine()

	cmd := e.Playbook("/ws/playbooks/site.yml", PlaybookOptions{
		ExtraVars: "vlan_id=100",
		Tags:      "interfaces",
		Verbose:   true,
	})

	for _, want := range []string{"--extra-vars", "vlan_id=100", "--tags", "interfaces", "-vvv"} {
		if !hasArg(cmd.Argv, want) {
			t.Errorf("argv missing %q: %v", want, cmd.Argv)
		}
	}
}

func TestAdhoc(t *testing.T) {
	e := testEngine()

	cmd := e.Adhoc("all", "ping", "")
	want := "ansible -i /ws/inventory/hosts.ini all -m ping"
	if strings.Join(cmd.Argv, " ") != want {
		t.Errorf("Argv = %v, want %q", cmd.Argv, want)
	}

	cmd = e.Adhoc("qfx1", moduleConfig, "display=set")
	if !hasArg(cmd.Argv, "-a") || !hasArg(cmd.Argv, "display=set") {
		t.Errorf("argv missing module args: %v", cmd.Argv)
	}
}

func TestRunCommands_EncodesJSON(t *testing.T) {
	e := testEngine()

	cmd, err := e.RunCommands("all", []string{"show version", "show interfaces"})
	if err != nil {
		t.Fatalf("RunCommands failed: %v", err)
	}
	if !hasArg(cmd.Argv, `commands=["show version","show interfaces"]`) {
		t.Errorf("argv missing encoded commands: %v", cmd.Argv)
	}
}

func TestPushConfig(t *testing.T) {
	e := testEngine()

	cmd, err := e.PushConfig("qfx1", []string{"set vlans v100 vlan-id 100"}, true, true)
	if err != nil {
		t.Fatalf("PushConfig failed: %v", err)
	}
	joined := strings.Join(cmd.Argv, " ")
	if !strings.Contains(joined, `lines=["set vlans v100 vlan-id 100"] update=merge commit=yes`) {
		t.Errorf("argv missing module args: %v", cmd.Argv)
	}
	if cmd.Argv[len(cmd.Argv)-1] != "--check" {
		t.Errorf("check mode push must end with --check: %v", cmd.Argv)
	}
}

func TestEnv_DisablesHostKeyCheckingAndColor(t *testing.T) {
	e := testEngine()
	cmd := e.Ping("all")

	env := strings.Join(cmd.Env, "\n")
	if !strings.Contains(env, "ANSIBLE_HOST_KEY_CHECKING=False") {
		t.Error("env missing ANSIBLE_HOST_KEY_CHECKING=False")
	}
	if !strings.Contains(env, "ANSIBLE_FORCE_COLOR=false") {
		t.Error("env missing ANSIBLE_FORCE_COLOR=false")
	}
}

func TestFormatResult(t *testing.T) {
	cases := []struct {
		name string
		res  runner.Result
		want []string
	}{
		{
			"output and nonzero exit",
			runner.Result{ExitCode: 2, Stdout: "out", Stderr: "err"},
			[]string{"=== OUTPUT ===\nout", "=== STDERR ===\nerr", "=== RETURN CODE: 2 ==="},
		},
		{
			"timeout",
			runner.Result{TimedOut: true, ExitCode: -1},
			[]string{"timed out"},
		},
		{
			"silence",
			runner.Result{},
			[]string{"no output"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatResult(tc.res)
			for _, want := range tc.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatResult = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestSummarize_ExtractsRecap(t *testing.T) {
	raw := "PLAY [all]\n\nTASK [ping]\nok: [qfx1]\nfatal: [qfx2]: FAILED!\n\nPLAY RECAP\nqfx1 : ok=1\nqfx2 : failed=1\n"
	got := Summarize(raw)

	if !strings.HasPrefix(got, "=== SUMMARY ===") {
		t.Errorf("summary missing header: %q", got)
	}
	if !strings.Contains(got, "fatal: [qfx2]") {
		t.Error("summary missing fatal line")
	}
	if !strings.Contains(got, "=== FULL OUTPUT ===") {
		t.Error("summary missing full output section")
	}

	plain := "nothing interesting\n"
	if Summarize(plain) != plain {
		t.Error("output without recap should pass through unchanged")
	}
}

func TestClassify(t *testing.T) {
	if Classify(runner.Result{}) != StatusOK {
		t.Error("zero exit should classify OK")
	}
	if Classify(runner.Result{ExitCode: 4}) != StatusFailed {
		t.Error("non-zero exit should classify failed")
	}
	if Classify(runner.Result{TimedOut: true, ExitCode: -1}) != StatusTimedOut {
		t.Error("timeout should classify timed out")
	}
}
