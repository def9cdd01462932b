package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinodismyname/mcpcellar/config"
)

// Manager enforces the filesystem allow-list for source workbooks and report
// exports. It stores canonical absolute directory paths and validates that
// requested file paths are within these roots and have supported extensions.
type Manager struct {
	allowedDirs []string
	allowedExts map[string]struct{}
}

// ErrNotAllowed indicates the requested path is outside the allow-list roots.
var ErrNotAllowed = errors.New("security: path not allowed")

// ErrUnsupportedExtension indicates the requested file extension is not supported.
var ErrUnsupportedExtension = errors.New("security: unsupported file extension")

// ErrNotFound indicates the requested file does not exist or is not accessible.
var ErrNotFound = errors.New("security: file not found")

// exportExt is the only format reports are written in.
const exportExt = ".xlsx"

// NewManager constructs a security manager given an allow-list of directories
// and a list of allowed file extensions (case-insensitive, with leading dot).
// Directories are canonicalized (absolute + EvalSymlinks) and validated.
func NewManager(allowDirs []string, allowedExtensions []string) (*Manager, error) {
	if len(allowedExtensions) == 0 {
		allowedExtensions = []string{".xlsx", ".xlsm"}
	}

	exts := make(map[string]struct{}, len(allowedExtensions))
	for _, e := range allowedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || !strings.HasPrefix(e, ".") {
			return nil, fmt.Errorf("security: invalid extension: %q", e)
		}
		exts[e] = struct{}{}
	}

	canonical := make([]string, 0, len(allowDirs))
	for _, d := range allowDirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("security: resolve abs for %q: %w", d, err)
		}
		// EvalSymlinks so that symlinked roots cannot be used to escape later.
		real, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, fmt.Errorf("security: eval symlinks for %q: %w", abs, err)
		}
		info, err := os.Stat(real)
		if err != nil {
			return nil, fmt.Errorf("security: stat %q: %w", real, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("security: allow-list entry is not a directory: %q", real)
		}
		canonical = append(canonical, filepath.Clean(real))
	}

	return &Manager{allowedDirs: canonical, allowedExts: exts}, nil
}

// NewManagerFromEnv constructs a Manager from config.EnvAllowedDirs, a path
// list separated by os.PathListSeparator. An empty variable yields an empty
// allow-list (deny-by-default).
func NewManagerFromEnv() (*Manager, error) {
	list := os.Getenv(config.EnvAllowedDirs)
	var dirs []string
	if list != "" {
		dirs = filepath.SplitList(list)
	}
	return NewManager(dirs, nil)
}

// AllowedDirectories returns the canonical allow-list roots.
func (m *Manager) AllowedDirectories() []string {
	out := make([]string, len(m.allowedDirs))
	copy(out, m.allowedDirs)
	return out
}

// ValidateConfig returns an error when no allow-list entries are configured.
func (m *Manager) ValidateConfig() error {
	if len(m.allowedDirs) == 0 {
		return errors.New("security: no allowed directories configured")
	}
	return nil
}

// ValidateOpenPath ensures the input path refers to an existing file with an
// allowed extension inside one of the configured allow-list directories.
// It returns the canonical absolute path suitable for opening.
func (m *Manager) ValidateOpenPath(input string) (string, error) {
	if input == "" {
		return "", ErrNotAllowed
	}
	ext := strings.ToLower(filepath.Ext(input))
	if _, ok := m.allowedExts[ext]; !ok {
		return "", ErrUnsupportedExtension
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("security: abs path: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("security: eval symlinks: %w", err)
	}

	info, err := os.Stat(real)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("security: stat: %w", err)
	}
	if info.IsDir() {
		return "", ErrNotAllowed
	}
	if !m.contains(real) {
		return "", ErrNotAllowed
	}
	return real, nil
}

// ValidateSavePath checks an export target. The file may not exist yet; its
// nearest existing ancestor is resolved through symlinks and must sit inside
// an allow-list root. Only .xlsx targets are accepted.
func (m *Manager) ValidateSavePath(input string) (string, error) {
	if input == "" {
		return "", ErrNotAllowed
	}
	if strings.ToLower(filepath.Ext(input)) != exportExt {
		return "", ErrUnsupportedExtension
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("security: abs path: %w", err)
	}

	// Walk up to the first existing directory, remembering the missing tail.
	dir, tail := filepath.Dir(abs), []string{filepath.Base(abs)}
	for {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotAllowed
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		dir = parent
	}
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("security: eval symlinks: %w", err)
	}
	target := filepath.Join(append([]string{realDir}, tail...)...)

	// An existing target that is a symlink must not point outside the roots.
	if real, err := filepath.EvalSymlinks(target); err == nil {
		target = real
	}
	if !m.contains(target) {
		return "", ErrNotAllowed
	}
	return target, nil
}

// contains reports whether p lies strictly inside one of the roots.
func (m *Manager) contains(p string) bool {
	for _, root := range m.allowedDirs {
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." || rel == "" {
			continue
		}
		if !strings.HasPrefix(filepath.Clean(rel), "..") {
			return true
		}
	}
	return false
}
