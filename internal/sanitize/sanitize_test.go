package sanitize

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCheckName(t *testing.T) {
	valid := []string{
		"",
		"qfx1",
		"qfx_switches",
		"inventory/hosts.ini",
		"10.0.0.1",
		"vlan_id=100,site=lab",
		"show version",
		"junipernetworks.junos.junos_facts",
	}
	for _, v := range valid {
		if err := CheckName("arg", v); err != nil {
			t.Errorf("CheckName(%q) = %v, want nil", v, err)
		}
	}

	invalid := []string{
		"qfx1; rm -rf /",
		"$(whoami)",
		"a|b",
		"a&b",
		"a`b`",
		"a>b",
		"a<b",
		"a\\b",
		"line\nbreak",
		"host\x00name",
	}
	for _, v := range invalid {
		if err := CheckName("arg", v); !errors.Is(err, ErrRejected) {
			t.Errorf("CheckName(%q) = %v, want ErrRejected", v, err)
		}
	}
}

func TestCheckName_DoesNotEchoValue(t *testing.T) {
	err := CheckName("hostname", "evil;$(payload)")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "payload") {
		t.Errorf("error echoes rejected input: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "hostname") {
		t.Errorf("error should name the argument: %q", err.Error())
	}
}

func TestCheckFilename(t *testing.T) {
	for _, v := range []string{"site.yml", "qfx_switches", "backup-config.yaml", ""} {
		if err := CheckFilename("name", v); err != nil {
			t.Errorf("CheckFilename(%q) = %v, want nil", v, err)
		}
	}
	for _, v := range []string{"../site.yml", "a/b.yml", ".hidden", "a b", "a;b"} {
		if err := CheckFilename("name", v); !errors.Is(err, ErrRejected) {
			t.Errorf("CheckFilename(%q) = %v, want ErrRejected", v, err)
		}
	}
}

func TestCheckBody(t *testing.T) {
	valid := []string{
		"- hosts: all\n  tasks: []\n",
		"ntp_server: 10.0.0.254\n",
		"{{ vlan_id | default(1) }}\n",
		"[defaults]\nhost_key_checking = False\n",
	}
	for _, v := range valid {
		if err := CheckBody("content", v); err != nil {
			t.Errorf("CheckBody(%q) = %v, want nil", v, err)
		}
	}

	invalid := []string{
		"a: `whoami`\n",
		"binary\x00data",
		"esc\x1b[31m",
	}
	for _, v := range invalid {
		if err := CheckBody("content", v); !errors.Is(err, ErrRejected) {
			t.Errorf("CheckBody(%q) = %v, want ErrRejected", v, err)
		}
	}
}

func TestMask_Lines(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		hidden string
	}{
		{"yaml password", "ansible_password: foo123\n", "foo123"},
		{"yaml secret", "radius_secret: hunter2\n", "hunter2"},
		{"api token", "api_token: abc.def.ghi\n", "abc.def.ghi"},
		{"ini assignment", "vault_key = deadbeef\n", "deadbeef"},
		{"inline pair", "qfx1 ansible_host=10.0.0.1 ansible_password=topsecret\n", "topsecret"},
		{"indented", "  become_password: nested1\n", "nested1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Mask(tc.in)
			if strings.Contains(got, tc.hidden) {
				t.Errorf("Mask(%q) = %q, still contains secret", tc.in, got)
			}
			if !strings.Contains(got, Redacted) {
				t.Errorf("Mask(%q) = %q, missing redaction marker", tc.in, got)
			}
		})
	}
}

func TestMask_LeavesOrdinaryTextAlone(t *testing.T) {
	in := "ntp_server: 10.0.0.254\nhostname: qfx1\nPLAY RECAP\n"
	if got := Mask(in); got != in {
		t.Errorf("Mask changed non-secret text:\n%q\n%q", in, got)
	}
}

func TestMask_Idempotent(t *testing.T) {
	in := "ansible_password: foo123\nqfx1 api_token=abc\n"
	once := Mask(in)
	twice := Mask(once)
	if once != twice {
		t.Errorf("Mask not idempotent:\n%q\n%q", once, twice)
	}
}

// The masked form of any "password: <value>" line never contains the
// value, and masking is always idempotent.
func TestMask_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	secret := gen.RegexMatch(`[A-Za-z0-9!@%^*+]{4,20}`)
	key := gen.RegexMatch(`[a-z_]{0,10}(password|secret|token|key)[a-z_]{0,10}`)

	properties.Property("secret value never survives masking", prop.ForAll(
		func(key, value string) bool {
			text := "hostname: qfx1\n" + key + ": " + value + "\nother: fine\n"
			return !strings.Contains(Mask(text), value)
		},
		key,
		secret,
	))

	properties.Property("masking is idempotent", prop.ForAll(
		func(key, value string) bool {
			text := key + ": " + value + "\n" + key + "=" + value + "\n"
			once := Mask(text)
			return Mask(once) == once
		},
		key,
		secret,
	))

	properties.TestingRun(t)
}
