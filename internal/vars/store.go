// Package vars manages the group- and host-scoped YAML variable files
// and computes the merged, read-only "effective variables" view for a
// host.
package vars

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/backup"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/fsutil"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/inventory"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/pathguard"
)

// Scope selects which variable directory a file lives in.
type Scope string

const (
	ScopeGroup Scope = "group"
	ScopeHost  Scope = "host"
)

var (
	// ErrNotFound reports a missing variable file.
	ErrNotFound = errors.New("variable file not found")

	// ErrParse reports content that is not a YAML mapping.
	ErrParse = errors.New("variable file is not a YAML mapping")
)

// extensions accepted on read; writes always produce .yml.
var extensions = []string{".yml", ".yaml"}

// Store reads and writes variable files for both scopes.
type Store struct {
	guard    *pathguard.Guard
	backups  *backup.Manager
	inv      *inventory.Store
	groupDir string
	hostDir  string
}

func NewStore(guard *pathguard.Guard, backups *backup.Manager, inv *inventory.Store, groupDir, hostDir string) *Store {
	return &Store{
		guard:    guard,
		backups:  backups,
		inv:      inv,
		groupDir: groupDir,
		hostDir:  hostDir,
	}
}

func (s *Store) dir(scope Scope) (string, error) {
	switch scope {
	case ScopeGroup:
		return s.groupDir, nil
	case ScopeHost:
		return s.hostDir, nil
	default:
		return "", fmt.Errorf("unknown variable scope %q", scope)
	}
}

// Read returns the raw content of the variable file for scope/name,
// trying .yml then .yaml.
func (s *Store) Read(scope Scope, name string) (string, error) {
	dir, err := s.dir(scope)
	if err != nil {
		return "", err
	}
	for _, ext := range extensions {
		abs, err := s.guard.Resolve(path.Join(dir, name+ext))
		if errors.Is(err, pathguard.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return "", fmt.Errorf("read variable file: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("%s vars %q: %w", scope, name, ErrNotFound)
}

// Write replaces the variable file for scope/name. The body must parse
// as a YAML mapping; the prior file, if any, is backed up first.
func (s *Store) Write(scope Scope, name, content string) error {
	if err := checkMapping(content); err != nil {
		return err
	}
	dir, err := s.dir(scope)
	if err != nil {
		return err
	}
	abs, err := s.guard.ResolveNew(path.Join(dir, name+".yml"))
	if err != nil {
		return err
	}
	if _, _, err := s.backups.Snapshot(abs); err != nil {
		return fmt.Errorf("backup variable file: %w", err)
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("write variable file: %w", err)
	}
	return nil
}

// List returns the names (file names minus extension) of all group and
// host variable files, each sorted.
func (s *Store) List() (groups, hosts []string, err error) {
	groups, err = s.listDir(s.groupDir)
	if err != nil {
		return nil, nil, err
	}
	hosts, err = s.listDir(s.hostDir)
	if err != nil {
		return nil, nil, err
	}
	return groups, hosts, nil
}

func (s *Store) listDir(dir string) ([]string, error) {
	abs, err := s.guard.Resolve(dir)
	if errors.Is(err, pathguard.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range extensions {
			if strings.HasSuffix(e.Name(), ext) {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Effective merges the three variable sources for host: inline inventory
// variables first, then each group file in inventory-declared order,
// then the host file. More specific sources override earlier keys; the
// merge is computed fresh on every call and never persisted.
func (s *Store) Effective(host string) (map[string]any, error) {
	inline, err := s.inv.InlineVars(host)
	if err != nil {
		return nil, err
	}
	merged := map[string]any{}
	for k, v := range inline {
		merged[k] = v
	}

	groups, err := s.inv.GroupsOf(host)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		if err := s.overlay(merged, ScopeGroup, group); err != nil {
			return nil, err
		}
	}
	if err := s.overlay(merged, ScopeHost, host); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *Store) overlay(merged map[string]any, scope Scope, name string) error {
	content, err := s.Read(scope, name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(content), &m); err != nil {
		return fmt.Errorf("%s vars %q: %w", scope, name, ErrParse)
	}
	for k, v := range m {
		merged[k] = v
	}
	return nil
}

// RenderYAML serializes an effective-variables map for display.
func RenderYAML(m map[string]any) (string, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("render variables: %w", err)
	}
	return string(out), nil
}

func checkMapping(content string) error {
	var m map[string]any
	if err := yaml.Unmarshal([]byte(content), &m); err != nil {
		return fmt.Errorf("%w", ErrParse)
	}
	return nil
}
