// Package storage reads and writes flowchart files in a save directory and
// describes local files picked for attachment.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Ext is the extension flowchart files are saved with.
const Ext = ".json"

// Descriptor describes a local file chosen by the user.
type Descriptor struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Files stores documents under Dir. An empty Dir means the working directory.
type Files struct {
	Dir string
}

// Path resolves name against the save directory, adding the flowchart
// extension when name has none.
func (f Files) Path(name string) string {
	if filepath.Ext(name) == "" {
		name += Ext
	}
	if filepath.IsAbs(name) || f.Dir == "" {
		return name
	}
	return filepath.Join(f.Dir, name)
}

// Open returns the raw text of a saved document.
func (f Files) Open(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("no file name given")
	}
	data, err := os.ReadFile(f.Path(name))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	return string(data), nil
}

// Save writes text to name, creating the save directory when needed.
func (f Files) Save(name, text string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("no file name given")
	}
	path := f.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create save directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// List returns the flowchart files in the save directory, sorted by name.
// A missing directory lists as empty.
func (f Files) List() ([]string, error) {
	dir := f.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), Ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Pick describes the regular file at path so it can be attached to a node.
func (f Files) Pick(path string) (Descriptor, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return Descriptor{}, errors.New("no file given")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Descriptor{}, fmt.Errorf("pick %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return Descriptor{}, fmt.Errorf("pick %s: not a regular file", path)
	}
	return Descriptor{
		Name:    info.Name(),
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
