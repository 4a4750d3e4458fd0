package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

var (
	fileNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// File is one goose SQL script in a migrations directory.
type File struct {
	Version int64
	Slug    string
	Path    string
}

// ListFiles returns the directory's migrations in version order. Names must
// look like 20260112080000_create_users.sql and versions must be unique.
func ListFiles(dir string) ([]File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	files := make([]File, 0, len(entries))
	byVersion := make(map[int64]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		match := fileNameRe.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("migration %q must be named YYYYMMDDHHMMSS_snake_name.sql", entry.Name())
		}
		version, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", entry.Name(), err)
		}
		if other, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("migrations %q and %q share version %d", other, entry.Name(), version)
		}
		byVersion[version] = entry.Name()
		files = append(files, File{
			Version: version,
			Slug:    match[2],
			Path:    filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks names, versions and that every script can be rolled
// back. An empty directory is valid.
func ValidateDir(dir string) error {
	files, err := ListFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	for _, f := range files {
		raw, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("read %q: %w", f.Path, err)
		}
		body := string(raw)
		up := strings.Index(body, upMarker)
		down := strings.Index(body, downMarker)
		switch {
		case up < 0:
			return fmt.Errorf("migration %d_%s has no %q section", f.Version, f.Slug, upMarker)
		case down < 0:
			return fmt.Errorf("migration %d_%s has no %q section", f.Version, f.Slug, downMarker)
		case down < up:
			return fmt.Errorf("migration %d_%s declares Down before Up", f.Version, f.Slug)
		}
	}

	collected, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("collect migrations: %w", err)
	}
	if len(collected) != len(files) {
		return fmt.Errorf("goose found %d migrations, expected %d", len(collected), len(files))
	}
	return nil
}

// CreateSQLMigration writes a timestamped goose template into dir and
// returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	before, err := ListFiles(dir)
	if err != nil {
		return "", err
	}
	if err := goose.Create(nil, dir, slug, "sql"); err != nil {
		return "", fmt.Errorf("goose create: %w", err)
	}
	after, err := ListFiles(dir)
	if err != nil {
		return "", err
	}

	known := make(map[string]struct{}, len(before))
	for _, f := range before {
		known[f.Path] = struct{}{}
	}
	for _, f := range after {
		if _, ok := known[f.Path]; !ok && f.Slug == slug {
			return f.Path, nil
		}
	}
	return "", fmt.Errorf("goose did not create a migration for %q", slug)
}
