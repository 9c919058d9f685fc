package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/backup"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/pathguard"
)

func newWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	root := t.TempDir()
	g, err := pathguard.New(root)
	if err != nil {
		t.Fatal(err)
	}
	w := New(g, backup.NewManager())
	if errs := w.EnsureLayout(); len(errs) != 0 {
		t.Fatalf("EnsureLayout errors: %v", errs)
	}
	return w, g.Root()
}

func TestEnsureLayout(t *testing.T) {
	_, root := newWorkspace(t)

	for _, dir := range layoutDirs {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("layout dir %s missing: %v", dir, err)
		}
	}
}

func TestStructure_SkipsBackupsAndDotfiles(t *testing.T) {
	w, root := newWorkspace(t)

	files := map[string]string{
		"inventory/hosts.ini":                  "[all]\n",
		"inventory/hosts.ini.20250101_000000.bak": "old\n",
		".hidden":                              "x",
		"playbooks/site.yml":                   "- hosts: all\n",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(root, rel), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tree, err := w.Structure()
	if err != nil {
		t.Fatalf("Structure failed: %v", err)
	}
	for _, want := range []string{"inventory/", "hosts.ini", "site.yml"} {
		if !strings.Contains(tree, want) {
			t.Errorf("Structure missing %q:\n%s", want, tree)
		}
	}
	for _, banned := range []string{".bak", ".hidden"} {
		if strings.Contains(tree, banned) {
			t.Errorf("Structure leaks %q:\n%s", banned, tree)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	w, _ := newWorkspace(t)

	if _, _, err := w.WriteFile("group_vars/all.yml", "a: 1\n", true); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := w.ReadFile("group_vars/all.yml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got != "a: 1\n" {
		t.Errorf("ReadFile = %q", got)
	}

	// Overwrite takes a backup of the first content.
	b, taken, err := w.WriteFile("group_vars/all.yml", "a: 2\n", true)
	if err != nil {
		t.Fatal(err)
	}
	if !taken || string(b.Content) != "a: 1\n" {
		t.Errorf("backup = taken=%v content=%q", taken, b.Content)
	}

	// And not when asked to skip it.
	_, taken, err = w.WriteFile("group_vars/all.yml", "a: 3\n", false)
	if err != nil {
		t.Fatal(err)
	}
	if taken {
		t.Error("backup taken despite withBackup=false")
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	w, root := newWorkspace(t)

	if _, _, err := w.WriteFile("roles/ntp/tasks/main.yml", "- name: t\n", true); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "roles", "ntp", "tasks", "main.yml")); err != nil {
		t.Errorf("nested file missing: %v", err)
	}
}

func TestReadFile_MissingAndDirectory(t *testing.T) {
	w, _ := newWorkspace(t)

	if _, err := w.ReadFile("nope.yml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadFile(missing) = %v, want ErrNotFound", err)
	}

	if _, _, err := w.WriteFile("playbooks/site.yml", "- hosts: all\n", false); err != nil {
		t.Fatal(err)
	}
	got, err := w.ReadFile("playbooks")
	if err != nil {
		t.Fatalf("ReadFile(dir) failed: %v", err)
	}
	if !strings.Contains(got, "is a directory") || !strings.Contains(got, "site.yml") {
		t.Errorf("ReadFile(dir) = %q", got)
	}
}

func TestReadFile_TraversalRejected(t *testing.T) {
	w, _ := newWorkspace(t)

	_, err := w.ReadFile("../../../etc/passwd")
	var v *pathguard.Violation
	if !errors.As(err, &v) {
		t.Errorf("ReadFile(traversal) = %v, want Violation", err)
	}
}

func TestEngineConfig(t *testing.T) {
	w, _ := newWorkspace(t)

	if _, err := w.ReadEngineConfig(); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadEngineConfig(missing) = %v, want ErrNotFound", err)
	}

	cfg := "[defaults]\nhost_key_checking = False\n"
	if _, _, err := w.WriteEngineConfig(cfg); err != nil {
		t.Fatalf("WriteEngineConfig failed: %v", err)
	}
	got, err := w.ReadEngineConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("ReadEngineConfig = %q", got)
	}
}

func TestTemplates(t *testing.T) {
	w, _ := newWorkspace(t)

	if err := w.CreateTemplate("vlan", "{{ vlan_id }}\n"); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	if err := w.CreateTemplate("vlan.j2", "other\n"); !errors.Is(err, ErrExists) {
		t.Errorf("CreateTemplate(existing) = %v, want ErrExists", err)
	}

	got, err := w.ReadTemplate("vlan")
	if err != nil {
		t.Fatalf("ReadTemplate failed: %v", err)
	}
	if got != "{{ vlan_id }}\n" {
		t.Errorf("ReadTemplate = %q", got)
	}

	names, err := w.ListTemplates()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"vlan.j2"}) {
		t.Errorf("ListTemplates = %v", names)
	}
}
