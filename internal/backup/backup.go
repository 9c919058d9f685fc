// Package backup snapshots workspace files before they are mutated.
// A snapshot is a plain sibling file, so restoration never needs more
// than a copy. Backups are kept indefinitely; there is no pruning.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/fsutil"
)

// timestampLayout sorts lexically in creation order.
const timestampLayout = "20060102_150405"

// Backup is the owned record of one snapshot. It carries the snapshot
// content so callers (and tests) can assert on it without re-reading
// the filesystem.
type Backup struct {
	Original  string // absolute path of the file that was backed up
	Path      string // absolute path of the backup file
	Timestamp time.Time
	Content   []byte
}

// Name returns the backup's file name, the form shown to callers.
func (b Backup) Name() string {
	return filepath.Base(b.Path)
}

// Manager creates and restores snapshots. The zero value is not usable;
// construct with NewManager.
type Manager struct {
	now func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// Snapshot copies path to a timestamped sibling and returns the Backup.
// A missing target is not an error: pure creation needs no backup, and
// ok=false tells the caller none was taken. Any other failure is fatal
// to the enclosing mutation.
func (m *Manager) Snapshot(path string) (Backup, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Backup{}, false, nil
		}
		return Backup{}, false, fmt.Errorf("read original: %w", err)
	}

	ts := m.now()
	dst, err := m.freshPath(path, ts)
	if err != nil {
		return Backup{}, false, err
	}
	if err := fsutil.WriteFileAtomic(dst, content, 0644); err != nil {
		return Backup{}, false, fmt.Errorf("write backup: %w", err)
	}

	return Backup{
		Original:  path,
		Path:      dst,
		Timestamp: ts,
		Content:   content,
	}, true, nil
}

// Restore overwrites the live file with the snapshot content. The live
// file is snapshotted first, so a restore never silently discards state.
func (m *Manager) Restore(b Backup) error {
	if b.Original == "" {
		return errors.New("restore: empty backup")
	}
	if _, _, err := m.Snapshot(b.Original); err != nil {
		return fmt.Errorf("backup before restore: %w", err)
	}
	if err := fsutil.WriteFileAtomic(b.Original, b.Content, 0644); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// freshPath picks "<path>.<timestamp>.bak", disambiguating with a
// counter when several snapshots land in the same second.
func (m *Manager) freshPath(path string, ts time.Time) (string, error) {
	base := fmt.Sprintf("%s.%s", path, ts.Format(timestampLayout))
	candidate := base + ".bak"
	for i := 1; ; i++ {
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("probe backup path: %w", err)
		}
		if i > 1000 {
			return "", errors.New("too many backups in one second")
		}
		candidate = fmt.Sprintf("%s_%d.bak", base, i)
	}
}
