package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"shaderscope/internal/logging"
	"shaderscope/internal/shader"
)

// FileLoader reads parsed-unit JSON documents from a fixed set of files
// and directories. Directories are read one level deep for .json entries;
// discovery policy beyond that belongs to the caller.
type FileLoader struct {
	Paths []string

	// MaxConcurrency bounds parallel file reads. Zero means 8.
	MaxConcurrency int
}

// NewFileLoader returns a loader over the given files and directories.
func NewFileLoader(paths []string, maxConcurrency int) *FileLoader {
	return &FileLoader{Paths: paths, MaxConcurrency: maxConcurrency}
}

// Load reads every unit file. A file the external parser produced but
// that fails to decode becomes a single malformed unit carrying the
// decode error, so the rebuild can report it without losing siblings.
// Results are ordered by file path for a deterministic first-wins
// duplicate policy.
func (l *FileLoader) Load(ctx context.Context) ([]shader.ParsedUnit, error) {
	files, err := l.expand()
	if err != nil {
		return nil, err
	}

	limit := l.MaxConcurrency
	if limit <= 0 {
		limit = 8
	}

	perFile := make([][]shader.ParsedUnit, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perFile[i] = decodeUnitFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var units []shader.ParsedUnit
	for _, batch := range perFile {
		units = append(units, batch...)
	}
	logging.EngineDebug("loaded %d units from %d files", len(units), len(files))
	return units, nil
}

// expand flattens Paths into a sorted list of unit files.
func (l *FileLoader) expand() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range l.Paths {
		info, err := os.Stat(p)
		if err != nil {
			logging.EngineWarn("unit path skipped: %v", err)
			continue
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			add(filepath.Join(p, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// decodeUnitFile reads one JSON document holding a single unit or an
// array of units. Units with no recorded FileIdentity inherit the file
// path so edits map back to a file.
func decodeUnitFile(path string) []shader.ParsedUnit {
	malformed := func(detail string) []shader.ParsedUnit {
		logging.EngineWarn("malformed unit file %s: %s", path, detail)
		return []shader.ParsedUnit{{FileIdentity: path, ParseError: detail}}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return malformed(err.Error())
	}

	var units []shader.ParsedUnit
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(data, &units); err != nil {
			return malformed(err.Error())
		}
	} else {
		var u shader.ParsedUnit
		if err := json.Unmarshal(data, &u); err != nil {
			return malformed(err.Error())
		}
		units = []shader.ParsedUnit{u}
	}

	for i := range units {
		if units[i].FileIdentity == "" {
			units[i].FileIdentity = path
		}
	}
	return units
}
