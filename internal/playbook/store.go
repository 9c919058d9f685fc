// Package playbook manages the playbook files and drives the engine to
// validate and execute them.
package playbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/backup"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/engine"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/fsutil"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/pathguard"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/runner"
)

var (
	// ErrNotFound reports a playbook that does not exist.
	ErrNotFound = errors.New("playbook not found")

	// ErrExists reports a create for a name that is already taken.
	ErrExists = errors.New("playbook already exists")

	// ErrParse reports content that is not structurally a playbook
	// (a YAML document).
	ErrParse = errors.New("playbook is not valid YAML")
)

// Info is one playbook in a listing. Description is the leading
// "# comment" line, when present.
type Info struct {
	Name        string
	Description string
}

// Validation is the outcome of an engine syntax check.
type Validation struct {
	OK         bool
	TimedOut   bool
	Diagnostic string
}

// Store is the playbook store. Engine invocations go through the
// injected Runner so tests can substitute a fake.
type Store struct {
	guard   *pathguard.Guard
	backups *backup.Manager
	run     runner.Runner
	eng     *engine.Engine
	dir     string
}

func NewStore(guard *pathguard.Guard, backups *backup.Manager, run runner.Runner, eng *engine.Engine, dir string) *Store {
	return &Store{guard: guard, backups: backups, run: run, eng: eng, dir: dir}
}

// CanonicalName appends .yml when name carries no YAML extension.
func CanonicalName(name string) string {
	if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
		return name
	}
	return name + ".yml"
}

// List returns every playbook in the playbooks directory, sorted, with
// first-line descriptions. Backup siblings are excluded.
func (s *Store) List() ([]Info, error) {
	abs, err := s.guard.Resolve(s.dir)
	if errors.Is(err, pathguard.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("list playbooks: %w", err)
	}
	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, ".bak") {
			continue
		}
		if !strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml") {
			continue
		}
		infos = append(infos, Info{Name: name, Description: s.description(path.Join(s.dir, name))})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *Store) description(rel string) string {
	abs, err := s.guard.Resolve(rel)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(string(data), "\n")
	if strings.HasPrefix(first, "#") {
		return strings.TrimSpace(strings.TrimPrefix(first, "#"))
	}
	return ""
}

// resolve finds an existing playbook, looking in the playbooks directory
// first and then at the workspace root (legacy location).
func (s *Store) resolve(name string) (string, error) {
	name = CanonicalName(name)
	abs, err := s.guard.Resolve(path.Join(s.dir, name))
	if err == nil {
		return abs, nil
	}
	if !errors.Is(err, pathguard.ErrNotExist) {
		return "", err
	}
	abs, err = s.guard.Resolve(name)
	if err == nil {
		return abs, nil
	}
	if errors.Is(err, pathguard.ErrNotExist) {
		return "", fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return "", err
}

// Read returns a playbook's raw content.
func (s *Store) Read(name string) (string, error) {
	abs, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read playbook: %w", err)
	}
	return string(data), nil
}

// Create writes a new playbook. An optional description becomes a
// leading comment line. Creating over an existing playbook is refused.
func (s *Store) Create(name, content, description string) error {
	if err := checkYAML(content); err != nil {
		return err
	}
	name = CanonicalName(name)
	rel := path.Join(s.dir, name)
	abs, err := s.guard.ResolveNew(rel)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(abs); err == nil {
		return fmt.Errorf("%q: %w", name, ErrExists)
	}
	if description != "" {
		content = "# " + description + "\n" + content
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("create playbook: %w", err)
	}
	return nil
}

// Update replaces an existing playbook's content, backing it up first.
// The backup is returned so callers can report its name.
func (s *Store) Update(name, content string) (backup.Backup, error) {
	if err := checkYAML(content); err != nil {
		return backup.Backup{}, err
	}
	abs, err := s.resolve(name)
	if err != nil {
		return backup.Backup{}, err
	}
	b, ok, err := s.backups.Snapshot(abs)
	if err != nil {
		return backup.Backup{}, fmt.Errorf("backup playbook: %w", err)
	}
	if !ok {
		return backup.Backup{}, fmt.Errorf("%q: %w", CanonicalName(name), ErrNotFound)
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(content), 0644); err != nil {
		return backup.Backup{}, fmt.Errorf("update playbook: %w", err)
	}
	return b, nil
}

// Delete removes a playbook after backing it up.
func (s *Store) Delete(name string) (backup.Backup, error) {
	abs, err := s.resolve(name)
	if err != nil {
		return backup.Backup{}, err
	}
	b, ok, err := s.backups.Snapshot(abs)
	if err != nil {
		return backup.Backup{}, fmt.Errorf("backup playbook: %w", err)
	}
	if !ok {
		return backup.Backup{}, fmt.Errorf("%q: %w", CanonicalName(name), ErrNotFound)
	}
	if err := os.Remove(abs); err != nil {
		return backup.Backup{}, fmt.Errorf("delete playbook: %w", err)
	}
	return b, nil
}

// Validate runs the engine's syntax check against the playbook.
func (s *Store) Validate(ctx context.Context, name string) (Validation, error) {
	abs, err := s.resolve(name)
	if err != nil {
		return Validation{}, err
	}
	res, err := s.run.Run(ctx, s.eng.Playbook(abs, engine.PlaybookOptions{SyntaxCheck: true}))
	if err != nil {
		return Validation{}, err
	}
	v := Validation{Diagnostic: engine.FormatResult(res)}
	switch engine.Classify(res) {
	case engine.StatusOK:
		v.OK = true
	case engine.StatusTimedOut:
		v.TimedOut = true
	}
	return v, nil
}

// Run executes the playbook. Check mode and host limiting are selected
// through opts; the raw engine result is returned for classification by
// the caller.
func (s *Store) Run(ctx context.Context, name string, opts engine.PlaybookOptions) (runner.Result, error) {
	abs, err := s.resolve(name)
	if err != nil {
		return runner.Result{}, err
	}
	return s.run.Run(ctx, s.eng.Playbook(abs, opts))
}

func checkYAML(content string) error {
	var doc any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return fmt.Errorf("%w", ErrParse)
	}
	return nil
}
