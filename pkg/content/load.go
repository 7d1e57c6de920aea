package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/jwebster45206/quest-engine/pkg/picker"
	"gopkg.in/yaml.v3"
)

// ManifestFile names the campaign's root file. Every other file is optional and holds one
// section as a top-level YAML document.
const ManifestFile = "campaign.yaml"

var ErrNotFound = errors.New("campaign not found")

// Load reads the campaign stored in dir. The campaign id defaults to the directory name.
func Load(dir string) (*Campaign, error) {
	c, err := LoadFS(os.DirFS(dir), ".")
	if err != nil {
		return nil, err
	}
	if c.ID == "" || c.ID == "." {
		c.ID = filepath.Base(dir)
	}
	return c, nil
}

// LoadFS reads the campaign in dir of fsys.
func LoadFS(fsys fs.FS, dir string) (*Campaign, error) {
	c := &Campaign{Picker: picker.DefaultConfig()}
	found, err := decodeFile(fsys, path.Join(dir, ManifestFile), c)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	sections := []struct {
		file string
		load func(string) error
	}{
		{"items.yaml", func(f string) error { return appendFile(fsys, f, &c.Items) }},
		{"enemies.yaml", func(f string) error { return appendFile(fsys, f, &c.Enemies) }},
		{"npcs.yaml", func(f string) error { return appendFile(fsys, f, &c.NPCs) }},
		{"traders.yaml", func(f string) error { return appendFile(fsys, f, &c.Traders) }},
		{"dialogues.yaml", func(f string) error { return appendFile(fsys, f, &c.Dialogues) }},
		{"templates.yaml", func(f string) error { return appendFile(fsys, f, &c.Templates) }},
		{"key_quests.yaml", func(f string) error { return appendFile(fsys, f, &c.KeyQuests) }},
		{"chests.yaml", func(f string) error { return appendFile(fsys, f, &c.Chests) }},
		{"atlas.yaml", func(f string) error { _, err := decodeFile(fsys, f, &c.Atlas); return err }},
		{"picker.yaml", func(f string) error { _, err := decodeFile(fsys, f, &c.Picker); return err }},
	}
	for _, s := range sections {
		if err := s.load(path.Join(dir, s.file)); err != nil {
			return nil, err
		}
	}

	if c.ID == "" {
		c.ID = path.Base(dir)
	}
	if err := c.Index(); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the campaigns stored as subdirectories of fsys, sorted by id. Directories
// that fail to load are skipped.
func List(fsys fs.FS) ([]Summary, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("failed to read campaigns directory: %w", err)
	}
	out := []Summary{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		c, err := LoadFS(fsys, e.Name())
		if err != nil {
			continue
		}
		out = append(out, c.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// decodeFile strictly decodes name into v. A missing file is not an error.
func decodeFile(fsys fs.FS, name string, v any) (bool, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return true, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}

func appendFile[T any](fsys fs.FS, name string, dst *[]T) error {
	var items []T
	if _, err := decodeFile(fsys, name, &items); err != nil {
		return err
	}
	*dst = append(*dst, items...)
	return nil
}
