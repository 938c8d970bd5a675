package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileLoader reads templates and data contexts from a directory.
// Template "card" is <dir>/card.html; data "profile" is the first of
// <dir>/profile.json, profile.yaml or profile.yml.
type FileLoader struct {
	dir string
}

// NewFileLoader creates a loader rooted at dir
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// LoadTemplate reads a named template
func (l *FileLoader) LoadTemplate(ctx context.Context, name string) (string, error) {
	path, err := l.path(name, ".html")
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("template %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read template %q: %w", name, err)
	}
	return string(content), nil
}

// LoadData reads a named data context
func (l *FileLoader) LoadData(ctx context.Context, name string) (map[string]interface{}, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path, err := l.path(name, ext)
		if err != nil {
			return nil, err
		}

		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data %q: %w", name, err)
		}

		data, err := DecodeData(content, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data %q: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("data %q: %w", name, ErrNotFound)
}

func (l *FileLoader) path(name, ext string) (string, error) {
	if l.dir == "" {
		return "", fmt.Errorf("no template directory configured")
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid name %q", name)
	}
	return filepath.Join(l.dir, clean+ext), nil
}

// DecodeData decodes a document into a mapping. ".yaml" and ".yml" are YAML,
// anything else is JSON.
func DecodeData(content []byte, ext string) (map[string]interface{}, error) {
	var data map[string]interface{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &data); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(content, &data); err != nil {
			return nil, err
		}
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}
