package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
)

// FileItem is one row in the upload picker.
type FileItem struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

func (model *TUIModel) openBrowser(path string) {
	items, err := browseDirectory(path)
	if err != nil {
		model.notice(fmt.Sprintf("Cannot open %s: %v", path, err))
		model.mode = modeBoard
		return
	}
	model.browserPath = path
	model.browserItems = items
	model.browserIndex = 0
}

func (model *TUIModel) updateBrowser(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		model.mode = modeBoard
		return model, nil
	case tea.KeyUp:
		if model.browserIndex > 0 {
			model.browserIndex--
		}
		return model, nil
	case tea.KeyDown:
		if model.browserIndex < len(model.browserItems)-1 {
			model.browserIndex++
		}
		return model, nil
	case tea.KeyEnter:
		if len(model.browserItems) == 0 {
			return model, nil
		}
		selected := model.browserItems[model.browserIndex]
		if selected.IsDir {
			model.openBrowser(selected.Path)
			return model, nil
		}
		model.mode = modeBoard
		model.notice(fmt.Sprintf("Uploading %s…", selected.Name))
		return model, model.uploadCmd(selected.Path)
	}
	return model, nil
}

// browseDirectory reads directory contents for the file browser
func browseDirectory(path string) ([]FileItem, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	items := make([]FileItem, 0, len(entries)+1)

	// Add parent directory entry if not at root
	if path != "/" && path != "." {
		items = append(items, FileItem{
			Name:  "..",
			Path:  filepath.Dir(path),
			IsDir: true,
		})
	}

	for _, entry := range entries {
		// Skip hidden files
		if len(entry.Name()) > 0 && entry.Name()[0] == '.' {
			continue
		}

		fullPath := filepath.Join(path, entry.Name())
		item := FileItem{
			Name:  entry.Name(),
			Path:  fullPath,
			IsDir: entry.IsDir(),
		}

		if !entry.IsDir() {
			if info, err := entry.Info(); err == nil {
				item.Size = info.Size()
			}
		}

		items = append(items, item)
	}

	// Sort: directories first, then files, both alphabetically
	sort.Slice(items, func(i, j int) bool {
		if items[i].IsDir != items[j].IsDir {
			return items[i].IsDir
		}
		return items[i].Name < items[j].Name
	})

	return items, nil
}

// defaultBrowsePath returns a sensible starting directory for the picker.
func defaultBrowsePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		docsPath := filepath.Join(home, "Documents")
		if _, err := os.Stat(docsPath); err == nil {
			return docsPath
		}
		downloadsPath := filepath.Join(home, "Downloads")
		if _, err := os.Stat(downloadsPath); err == nil {
			return downloadsPath
		}
		return home
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}
