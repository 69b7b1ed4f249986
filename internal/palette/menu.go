package palette

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MenuItem is one row of a context menu.
type MenuItem struct {
	Label     string
	Action    string // Empty for dividers
	Icon      string
	IsDivider bool
	IsActive  bool // Shown highlighted, e.g. a toggle that is on
}

// Picker runs menus and the image file chooser through one backend.
type Picker struct {
	backend Backend
	// Extensions limits the files ChooseFile offers, compared without case.
	// Empty offers every file.
	Extensions []string
}

// NewPicker creates a picker over backend.
func NewPicker(backend Backend) *Picker {
	return &Picker{backend: backend}
}

// Select shows items and returns the action of the chosen row, or
// ErrCancelled when the user dismisses the menu.
func (p *Picker) Select(prompt string, items []MenuItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}

	rows := make([]Item, 0, len(items))
	for _, item := range items {
		rows = append(rows, Item{
			Label:     item.Label,
			Action:    item.Action,
			Icon:      item.Icon,
			IsDivider: item.IsDivider,
			IsActive:  item.IsActive,
		})
	}

	for {
		chosen, err := p.backend.Show(prompt, rows, "")
		if err != nil {
			return "", err
		}
		// Only rofi refuses divider rows; elsewhere picking one re-shows the menu.
		if chosen.IsDivider || strings.TrimSpace(chosen.Action) == "" {
			continue
		}
		return chosen.Action, nil
	}
}

const (
	actionParent = "__parent__"
	dirPrefix    = "dir:"
	filePrefix   = "file:"
)

// ChooseFile lets the user walk the directory tree from dir and pick a file.
// It returns the absolute path of the chosen file.
func (p *Picker) ChooseFile(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = home
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", dir, err)
	}

	for {
		rows, err := p.listDir(dir)
		if err != nil {
			return "", err
		}

		chosen, err := p.backend.Show("Select Image", rows, p.location(dir))
		if err != nil {
			return "", err
		}

		switch {
		case chosen.Action == actionParent:
			dir = filepath.Dir(dir)
		case strings.HasPrefix(chosen.Action, dirPrefix):
			dir = strings.TrimPrefix(chosen.Action, dirPrefix)
		case strings.HasPrefix(chosen.Action, filePrefix):
			return strings.TrimPrefix(chosen.Action, filePrefix), nil
		}
	}
}

func (p *Picker) listDir(dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var dirs, files []Item
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(full); err == nil {
				isDir = info.IsDir()
			}
		}
		if isDir {
			dirs = append(dirs, Item{Label: name + "/", Action: dirPrefix + full, Icon: "folder"})
			continue
		}
		if !p.offers(name) {
			continue
		}
		files = append(files, Item{Label: name, Action: filePrefix + full, Icon: "image-x-generic"})
	}

	byLabel := func(items []Item) {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].Label) < strings.ToLower(items[j].Label)
		})
	}
	byLabel(dirs)
	byLabel(files)

	rows := make([]Item, 0, len(dirs)+len(files)+1)
	if parent := filepath.Dir(dir); parent != dir {
		rows = append(rows, Item{Label: "..", Action: actionParent, Icon: "go-up"})
	}
	rows = append(rows, dirs...)
	rows = append(rows, files...)
	if len(rows) == 0 {
		return nil, errors.New("no images or folders here")
	}
	return rows, nil
}

func (p *Picker) offers(name string) bool {
	if len(p.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range p.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// location is the chooser's message line: the directory and, when filtering,
// the accepted extensions.
func (p *Picker) location(dir string) string {
	if len(p.Extensions) == 0 {
		return dir
	}
	return dir + "  (" + strings.Join(p.Extensions, " ") + ")"
}
