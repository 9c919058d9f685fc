// Package workspace owns the directory layout of the automation
// workspace and the generic guarded file operations that are not
// specific to one structured store.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/backup"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/fsutil"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/pathguard"
)

// Workspace layout, relative to the root. The inventory file and the
// engine config sit at fixed locations; everything else is a directory
// of managed files.
const (
	InventoryDir  = "inventory"
	InventoryFile = "inventory/hosts.ini"
	PlaybooksDir  = "playbooks"
	GroupVarsDir  = "group_vars"
	HostVarsDir   = "host_vars"
	RolesDir      = "roles"
	TemplatesDir  = "templates"
	FilesDir      = "files"
	EngineConfig  = "ansible.cfg"
)

var layoutDirs = []string{
	InventoryDir, PlaybooksDir, GroupVarsDir, HostVarsDir, RolesDir, TemplatesDir, FilesDir,
}

var (
	// ErrNotFound reports a missing workspace file.
	ErrNotFound = errors.New("file not found")

	// ErrExists reports a create for a file that is already present.
	ErrExists = errors.New("file already exists")
)

// Workspace provides guarded access to loose files under the root.
type Workspace struct {
	guard   *pathguard.Guard
	backups *backup.Manager
}

func New(guard *pathguard.Guard, backups *backup.Manager) *Workspace {
	return &Workspace{guard: guard, backups: backups}
}

// Root returns the canonical workspace root.
func (w *Workspace) Root() string {
	return w.guard.Root()
}

// EnsureLayout creates the standard directories. Missing permission on
// one directory is reported but does not block the others.
func (w *Workspace) EnsureLayout() []error {
	var errs []error
	for _, dir := range layoutDirs {
		abs, err := w.guard.ResolveNew(dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.MkdirAll(abs, 0755); err != nil {
			errs = append(errs, fmt.Errorf("create %s: %w", dir, err))
		}
	}
	return errs
}

// Structure renders the workspace tree, skipping dotfiles and backup
// siblings.
func (w *Workspace) Structure() (string, error) {
	var b strings.Builder
	b.WriteString("=== WORKSPACE STRUCTURE ===\n")
	b.WriteString("Base: " + w.guard.Root() + "\n")
	if err := w.listDir(&b, ".", 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (w *Workspace) listDir(b *strings.Builder, rel string, depth int) error {
	abs, err := w.guard.Resolve(rel)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		b.WriteString(strings.Repeat("  ", depth) + "(permission denied)\n")
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".bak") {
			continue
		}
		if e.IsDir() {
			b.WriteString(indent + name + "/\n")
			if err := w.listDir(b, path.Join(rel, name), depth+1); err != nil {
				return err
			}
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fmt.Fprintf(b, "%s%s (%d bytes)\n", indent, name, info.Size())
	}
	return nil
}

// ReadFile returns the content of any workspace file. Reading a
// directory returns a listing of its entries instead.
func (w *Workspace) ReadFile(rel string) (string, error) {
	abs, err := w.guard.Resolve(rel)
	if err != nil {
		if errors.Is(err, pathguard.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", rel, ErrNotFound)
		}
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return "", fmt.Errorf("list %s: %w", rel, err)
		}
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		sort.Strings(names)
		return fmt.Sprintf("%q is a directory containing:\n  %s", rel, strings.Join(names, "\n  ")), nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

// WriteFile writes content to any workspace file, creating parent
// directories as needed. Unless withBackup is false, the prior content
// is snapshotted first; the backup (if any) is returned.
func (w *Workspace) WriteFile(rel, content string, withBackup bool) (backup.Backup, bool, error) {
	abs, err := w.guard.ResolveNew(rel)
	if err != nil {
		return backup.Backup{}, false, err
	}
	var b backup.Backup
	taken := false
	if withBackup {
		b, taken, err = w.backups.Snapshot(abs)
		if err != nil {
			return backup.Backup{}, false, fmt.Errorf("backup %s: %w", rel, err)
		}
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(content), 0644); err != nil {
		return backup.Backup{}, false, fmt.Errorf("write %s: %w", rel, err)
	}
	return b, taken, nil
}

// ReadEngineConfig returns the engine configuration file.
func (w *Workspace) ReadEngineConfig() (string, error) {
	return w.ReadFile(EngineConfig)
}

// WriteEngineConfig replaces the engine configuration file, backed up
// first.
func (w *Workspace) WriteEngineConfig(content string) (backup.Backup, bool, error) {
	return w.WriteFile(EngineConfig, content, true)
}

// templateExts are the extensions recognized as templates; CreateTemplate
// appends the first when the name carries neither.
var templateExts = []string{".j2", ".jinja2"}

func templateName(name string) string {
	for _, ext := range templateExts {
		if strings.HasSuffix(name, ext) {
			return name
		}
	}
	return name + templateExts[0]
}

// ListTemplates returns the template file names, sorted.
func (w *Workspace) ListTemplates() ([]string, error) {
	abs, err := w.guard.Resolve(TemplatesDir)
	if errors.Is(err, pathguard.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range templateExts {
			if strings.HasSuffix(e.Name(), ext) {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadTemplate returns a template's content.
func (w *Workspace) ReadTemplate(name string) (string, error) {
	return w.ReadFile(path.Join(TemplatesDir, templateName(name)))
}

// CreateTemplate writes a new template; an existing name is refused.
func (w *Workspace) CreateTemplate(name, content string) error {
	rel := path.Join(TemplatesDir, templateName(name))
	abs, err := w.guard.ResolveNew(rel)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(abs); err == nil {
		return fmt.Errorf("%s: %w", templateName(name), ErrExists)
	}
	if err := fsutil.WriteFileAtomic(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}
