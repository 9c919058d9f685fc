package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/backup"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/pathguard"
)

const sampleInventory = `# lab switches
[qfx_switches]
qfx1 ansible_host=10.0.0.1
qfx2 ansible_host=10.0.0.2 ansible_password=s3cret

[core_routers]
mx1 ansible_host=10.0.1.1
qfx1 ansible_host=10.0.0.1 mgmt=oob

[qfx_switches:vars]
ansible_network_os=junipernetworks.junos.junos
`

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "inventory"), 0755); err != nil {
		t.Fatal(err)
	}
	g, err := pathguard.New(root)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(g, backup.NewManager(), "inventory/hosts.ini")
	return s, filepath.Join(g.Root(), "inventory", "hosts.ini")
}

func seed(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRead_Missing(t *testing.T) {
	s, _ := newStore(t)
	if _, err := s.Read(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read on missing file = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	groups, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []Group{
		{Name: "qfx_switches", Hosts: []string{"qfx1", "qfx2"}},
		{Name: "core_routers", Hosts: []string{"mx1", "qfx1"}},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("List = %+v, want %+v", groups, want)
	}
}

func TestGroupsOf_DeclaredOrder(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	groups, err := s.GroupsOf("qfx1")
	if err != nil {
		t.Fatalf("GroupsOf failed: %v", err)
	}
	want := []string{"qfx_switches", "core_routers"}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("GroupsOf = %v, want %v", groups, want)
	}
}

func TestInlineVars_MergedAcrossLines(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	vars, err := s.InlineVars("qfx1")
	if err != nil {
		t.Fatalf("InlineVars failed: %v", err)
	}
	if vars["ansible_host"] != "10.0.0.1" {
		t.Errorf("ansible_host = %q", vars["ansible_host"])
	}
	if vars["mgmt"] != "oob" {
		t.Errorf("mgmt = %q", vars["mgmt"])
	}

	if _, err := s.InlineVars("nope"); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("InlineVars(unknown) = %v, want ErrHostNotFound", err)
	}
}

func TestAddHost_ExistingGroup(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	if err := s.AddHost("core_routers", "mx2", "10.0.1.2", ""); err != nil {
		t.Fatalf("AddHost failed: %v", err)
	}

	groups, err := s.GroupsOf("mx2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(groups, []string{"core_routers"}) {
		t.Errorf("GroupsOf(mx2) = %v", groups)
	}
}

func TestAddHost_NoAddress(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	if err := s.AddHost("qfx_switches", "qfx9", "", ""); !errors.Is(err, ErrNoAddress) {
		t.Errorf("AddHost without address = %v, want ErrNoAddress", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != sampleInventory {
		t.Errorf("rejected add changed the file: %q", got)
	}
}

func TestAddHost_Duplicate(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	err := s.AddHost("new_group", "qfx1", "10.9.9.9", "")
	if !errors.Is(err, ErrDuplicateHost) {
		t.Errorf("AddHost(existing) = %v, want ErrDuplicateHost", err)
	}
}

func TestAddHost_CreatesFile(t *testing.T) {
	s, _ := newStore(t)

	if err := s.AddHost("qfx_switches", "qfx9", "10.0.0.9", ""); err != nil {
		t.Fatalf("AddHost failed: %v", err)
	}
	content, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	want := "[qfx_switches]\nqfx9 ansible_host=10.0.0.9\n"
	if content != want {
		t.Errorf("content = %q, want %q", content, want)
	}
}

func TestRemoveHost_AllSections(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	if err := s.RemoveHost("qfx1"); err != nil {
		t.Fatalf("RemoveHost failed: %v", err)
	}
	ok, err := s.HostExists("qfx1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("qfx1 still present after removal")
	}

	if err := s.RemoveHost("qfx1"); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("second RemoveHost = %v, want ErrHostNotFound", err)
	}
}

func TestAddRemove_RoundTrip_ExistingGroup(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	if err := s.AddHost("qfx_switches", "h1", "10.0.0.50", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveHost("h1"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != sampleInventory {
		t.Errorf("round trip changed file:\ngot:  %q\nwant: %q", got, sampleInventory)
	}
}

func TestAddRemove_RoundTrip_NewGroup(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	if err := s.AddHost("g1", "h1", "10.0.0.1", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveHost("h1"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != sampleInventory {
		t.Errorf("round trip changed file:\ngot:  %q\nwant: %q", got, sampleInventory)
	}
}

func TestAddRemove_RoundTrip_PreexistingEmptyGroup(t *testing.T) {
	const content = "[g1]\n\n[other]\nh2 ansible_host=1.1.1.1\n"
	s, path := newStore(t)
	seed(t, path, content)

	if err := s.AddHost("g1", "h1", "10.0.0.9", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveHost("h1"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != content {
		t.Errorf("round trip changed file:\ngot:  %q\nwant: %q", got, content)
	}
}

func TestRemoveHost_KeepsAlreadyEmptyGroup(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, "[g1]\n\n[other]\nh2 ansible_host=1.1.1.1\nh3 ansible_host=1.1.1.2\n")

	if err := s.RemoveHost("h3"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatal(err)
	}
	want := "[g1]\n\n[other]\nh2 ansible_host=1.1.1.1\n"
	if got != want {
		t.Errorf("removal disturbed the empty group:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestWrite_BacksUpPriorContent(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, sampleInventory)

	b, ok, err := s.Write("[all]\nnew1 ansible_host=1.2.3.4\n")
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !ok {
		t.Fatal("no backup taken for existing inventory")
	}
	if string(b.Content) != sampleInventory {
		t.Error("backup content does not match prior inventory")
	}
}

func TestParse_Malformed(t *testing.T) {
	s, path := newStore(t)
	seed(t, path, "[broken\nhost1\n")

	if _, err := s.List(); !errors.Is(err, ErrParse) {
		t.Errorf("List on malformed file = %v, want ErrParse", err)
	}
}

// Adding any fresh host to any group and removing it again must leave
// the inventory byte-for-byte unchanged.
func TestAddRemove_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	name := gen.RegexMatch(`[a-z][a-z0-9_]{0,8}`)

	properties.Property("add then remove restores the file", prop.ForAll(
		func(group, host string) bool {
			if host == "qfx1" || host == "qfx2" || host == "mx1" {
				return true // already present, add is rejected by design
			}
			s, path := newStore(t)
			seed(t, path, sampleInventory)

			if err := s.AddHost(group, host, "10.1.2.3", ""); err != nil {
				return false
			}
			if err := s.RemoveHost(host); err != nil {
				return false
			}
			got, err := s.Read()
			return err == nil && got == sampleInventory
		},
		name,
		name,
	))

	properties.TestingRun(t)
}
