package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
)

// Source says where an effective config value came from.
type Source struct {
	Kind   SourceKind
	Name   string // for builtin/default
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted key, e.g. "thumbnail.spacing" -> file position of the winning value
	Files   []string          // files merged, includes before the file including them
}

// DefaultConfigPath is ~/.config/multiview/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "multiview", "config.yaml"), nil
}

// Load returns the validated config from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load, keeping the per-key sources for config explain.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath merges path and its includes over the defaults. A missing
// file is not an error.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{merged: map[string]bool{}, sources: map[string]Source{}}

	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(l.raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, l.locate(err)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// loader folds config files into one RawConfig. A file's includes are merged
// before the file itself, so the including file has the last word.
type loader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string

	merged map[string]bool // a file reached twice through includes merges once
	chain  []string        // files currently being loaded, outermost first
}

func (l *loader) load(path string) error {
	file, err := canonicalPath(path)
	if err != nil {
		return err
	}
	if slices.Contains(l.chain, file) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), file)
	}
	if l.merged[file] {
		return nil
	}
	l.merged[file] = true

	raw, positions, err := readFile(file)
	if err != nil {
		return err
	}

	l.chain = append(l.chain, file)
	for _, inc := range raw.Include {
		targets, err := includeTargets(file, inc)
		if err != nil {
			at := positions["include"]
			return fmt.Errorf("%s:%d:%d: include %q: %w", file, at.Line, at.Column, inc, err)
		}
		for _, target := range targets {
			if err := l.load(target); err != nil {
				return err
			}
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	l.raw = l.raw.merge(raw)
	maps.Copy(l.sources, positions)
	l.files = append(l.files, file)
	return nil
}

// locate attaches the file position of the offending key to a validation error.
func (l *loader) locate(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := l.sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}

// readFile decodes one file strictly and records the position of every key.
func readFile(file string) (RawConfig, map[string]Source, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", file, err)
	}

	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", file, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	positions := map[string]Source{}
	if len(doc.Content) > 0 {
		recordPositions(doc.Content[0], file, "", positions)
	}
	return raw, positions, nil
}

// recordPositions maps dotted key paths ("desktop_margins.top") to the
// position of their value.
func recordPositions(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
		recordPositions(val, file, key, out)
	}
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// includeTargets resolves an include entry against the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func includeTargets(from, include string) ([]string, error) {
	if include == "" {
		return nil, errors.New("path is empty")
	}
	if include == "~" || strings.HasPrefix(include, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = filepath.Join(home, strings.TrimPrefix(include[1:], "/"))
	}
	if !filepath.IsAbs(include) {
		include = filepath.Join(filepath.Dir(from), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}

	entries, err := os.ReadDir(include)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(include, ent.Name()))
			}
		}
	}
	return files, nil
}
