// Package inventory is the structured store for the INI-style host
// inventory. Mutations are line-oriented so that untouched bytes survive
// every edit: adding and then removing a host leaves the file exactly as
// it was.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/backup"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/fsutil"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/pathguard"
)

var (
	// ErrNotFound reports a missing inventory file.
	ErrNotFound = errors.New("inventory file not found")

	// ErrDuplicateHost reports an add for a host that already exists
	// anywhere in the inventory.
	ErrDuplicateHost = errors.New("host already exists in inventory")

	// ErrHostNotFound reports a removal for an unknown host.
	ErrHostNotFound = errors.New("host not found in inventory")

	// ErrNoAddress reports an add without a management address; the
	// host line format requires ansible_host=<addr>.
	ErrNoAddress = errors.New("no address specified for host")

	// ErrParse reports a structurally broken inventory file.
	ErrParse = errors.New("malformed inventory")
)

// Group is one bracketed section and its member hosts, in file order.
type Group struct {
	Name  string
	Hosts []string
}

// Store reads and edits the inventory file.
type Store struct {
	guard   *pathguard.Guard
	backups *backup.Manager
	relPath string
}

func NewStore(guard *pathguard.Guard, backups *backup.Manager, relPath string) *Store {
	return &Store{guard: guard, backups: backups, relPath: relPath}
}

// Path returns the inventory's path relative to the workspace root.
func (s *Store) Path() string {
	return s.relPath
}

// Read returns the raw inventory content.
func (s *Store) Read() (string, error) {
	abs, err := s.guard.Resolve(s.relPath)
	if err != nil {
		if errors.Is(err, pathguard.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read inventory: %w", err)
	}
	return string(data), nil
}

// Write replaces the whole inventory file, backing up the prior content
// first. It returns the backup, if one was taken.
func (s *Store) Write(content string) (backup.Backup, bool, error) {
	abs, err := s.guard.ResolveNew(s.relPath)
	if err != nil {
		return backup.Backup{}, false, err
	}
	b, ok, err := s.backups.Snapshot(abs)
	if err != nil {
		return backup.Backup{}, false, fmt.Errorf("backup inventory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(content), 0644); err != nil {
		return backup.Backup{}, false, fmt.Errorf("write inventory: %w", err)
	}
	return b, ok, nil
}

// AddHost appends "host ansible_host=<addr> [extraVars]" to the named
// group section, creating the section at the end of the file when it
// does not exist. Duplicate host names are rejected, never appended.
func (s *Store) AddHost(group, host, addr, extraVars string) error {
	if addr == "" {
		return fmt.Errorf("%q: %w", host, ErrNoAddress)
	}
	lines, _, err := s.load()
	if err != nil {
		return err
	}
	doc, err := parse(lines)
	if err != nil {
		return err
	}
	if doc.hasHost(host) {
		return fmt.Errorf("%q: %w", host, ErrDuplicateHost)
	}

	hostLine := fmt.Sprintf("%s ansible_host=%s", host, addr)
	if extraVars != "" {
		hostLine += " " + extraVars
	}

	if sec := doc.section(group); sec != nil {
		// Insert directly below the section header.
		at := sec.headerLine + 1
		lines = append(lines[:at], append([]string{hostLine}, lines[at:]...)...)
	} else {
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, "")
		}
		lines = append(lines, "["+group+"]", hostLine)
	}
	return s.save(lines)
}

// RemoveHost deletes the host's line from every section it appears in.
// A section the removal leaves with nothing under its header is pruned
// together with its separating blank line, which makes RemoveHost the
// exact inverse of an AddHost that created the section. A group that was
// empty before the edit is not touched.
func (s *Store) RemoveHost(host string) error {
	lines, existed, err := s.load()
	if err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}
	doc, err := parse(lines)
	if err != nil {
		return err
	}

	remove := map[int]bool{}
	touched := map[int]bool{} // header lines of sections that lost a host
	for _, sec := range doc.sections {
		for _, e := range sec.entries {
			if e.host == host {
				remove[e.line] = true
				if sec.headerLine >= 0 {
					touched[sec.headerLine] = true
				}
			}
		}
	}
	if len(remove) == 0 {
		return fmt.Errorf("%q: %w", host, ErrHostNotFound)
	}

	var kept []string
	keptHeader := map[int]int{} // original header line -> index in kept
	for i, line := range lines {
		if remove[i] {
			continue
		}
		if touched[i] {
			keptHeader[i] = len(kept)
		}
		kept = append(kept, line)
	}

	kept = pruneEmptySections(kept, keptHeader)
	return s.save(kept)
}

// List returns every group and its member hosts in declared order. Hosts
// above the first section header are reported under "ungrouped".
func (s *Store) List() ([]Group, error) {
	doc, err := s.parseFile()
	if err != nil {
		return nil, err
	}
	var groups []Group
	for _, sec := range doc.sections {
		if sec.meta {
			continue
		}
		if sec.name == "" && len(sec.entries) == 0 {
			continue
		}
		g := Group{Name: sec.displayName()}
		for _, e := range sec.entries {
			g.Hosts = append(g.Hosts, e.host)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// GroupsOf returns the groups containing host, in declared order.
func (s *Store) GroupsOf(host string) ([]string, error) {
	doc, err := s.parseFile()
	if err != nil {
		return nil, err
	}
	var groups []string
	for _, sec := range doc.sections {
		if sec.meta {
			continue
		}
		for _, e := range sec.entries {
			if e.host == host {
				groups = append(groups, sec.displayName())
				break
			}
		}
	}
	return groups, nil
}

// InlineVars returns the key=value pairs declared on the host's
// inventory lines. When a host appears on several lines, later lines
// override earlier keys.
func (s *Store) InlineVars(host string) (map[string]string, error) {
	doc, err := s.parseFile()
	if err != nil {
		return nil, err
	}
	vars := map[string]string{}
	found := false
	for _, sec := range doc.sections {
		if sec.meta {
			continue
		}
		for _, e := range sec.entries {
			if e.host != host {
				continue
			}
			found = true
			for k, v := range e.vars {
				vars[k] = v
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%q: %w", host, ErrHostNotFound)
	}
	return vars, nil
}

// HostExists reports whether host appears anywhere in the inventory.
func (s *Store) HostExists(host string) (bool, error) {
	doc, err := s.parseFile()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return doc.hasHost(host), nil
}

func (s *Store) parseFile() (*document, error) {
	lines, existed, err := s.load()
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, ErrNotFound
	}
	return parse(lines)
}

// load splits the file into lines without the trailing newline, so edits
// can treat it as a slice and save can re-append the newline.
func (s *Store) load() ([]string, bool, error) {
	abs, err := s.guard.ResolveNew(s.relPath)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read inventory: %w", err)
	}
	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil, true, nil
	}
	return strings.Split(content, "\n"), true, nil
}

func (s *Store) save(lines []string) error {
	abs, err := s.guard.ResolveNew(s.relPath)
	if err != nil {
		return err
	}
	if _, _, err := s.backups.Snapshot(abs); err != nil {
		return fmt.Errorf("backup inventory: %w", err)
	}
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	return nil
}
