// Package catalog reads versioned migration script pairs from a directory.
//
// A migration consists of two files following the naming convention
// NNNNN_description.up.sql and NNNNN_description.down.sql. Versions must
// form a dense sequence starting at 1, and every down file must have a
// matching up file. The catalog is rebuilt from disk on every read so that
// planning never acts on stale file state.
package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Catalog reading errors. Both abort the requested operation before any
// statement is executed.
var (
	// ErrOrphanDown indicates a down file without a matching up file.
	ErrOrphanDown = errors.New("down migration without matching up migration")
	// ErrBrokenSequence indicates a gap or duplicate in the version sequence.
	ErrBrokenSequence = errors.New("broken migration file sequence")
)

// MigrationFile describes one version of a migration pair discovered on disk.
type MigrationFile struct {
	Version         int
	Name            string
	UpFile          string
	DownFile        string
	UpFingerprint   string
	DownFingerprint string
}

var fileNameRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// ParseFileName splits a migration file name into version, name and
// direction. Returns an error for files that do not follow the naming
// convention; callers typically skip those.
func ParseFileName(filename string) (version int, name, direction string, err error) {
	m := fileNameRe.FindStringSubmatch(filename)
	if m == nil {
		return 0, "", "", fmt.Errorf("not a migration file name: %s", filename)
	}
	version, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid migration version in %s: %w", filename, err)
	}
	return version, m[2], m[3], nil
}

// Read scans dir for migration file pairs and returns them keyed by version.
// The directory is created if it does not exist. Fingerprints are computed
// eagerly for every discovered file; they are informational only and never
// gate execution.
func Read(dir string) (map[int]MigrationFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	files := make(map[int]MigrationFile)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, direction, err := ParseFileName(e.Name())
		if err != nil || direction != "up" {
			continue
		}
		fp, err := fingerprint(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		files[version] = MigrationFile{
			Version:       version,
			Name:          name,
			UpFile:        e.Name(),
			UpFingerprint: fp,
		}
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, _, direction, err := ParseFileName(e.Name())
		if err != nil || direction != "down" {
			continue
		}
		f, ok := files[version]
		if !ok {
			return nil, fmt.Errorf("version %d (%s): %w", version, e.Name(), ErrOrphanDown)
		}
		fp, err := fingerprint(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		f.DownFile = e.Name()
		f.DownFingerprint = fp
		files[version] = f
	}

	versions := make([]int, 0, len(files))
	for v := range files {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	for i, v := range versions {
		if v != i+1 {
			return nil, fmt.Errorf("version %d at position %d: %w", v, i, ErrBrokenSequence)
		}
	}

	return files, nil
}

// NextVersion returns the version number the next migration pair should use.
func NextVersion(files map[int]MigrationFile) int {
	return len(files) + 1
}

// Create writes an empty up/down file pair for the given version and returns
// the two file names.
func Create(dir string, version int, name string) (upFile, downFile string, err error) {
	slug := Slug(name)
	upFile = fmt.Sprintf("%05d_%s.up.sql", version, slug)
	downFile = fmt.Sprintf("%05d_%s.down.sql", version, slug)
	for _, f := range []string{upFile, downFile} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
			return "", "", fmt.Errorf("create migration file %s: %w", f, err)
		}
	}
	return upFile, downFile, nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

var slugCaser = cases.Lower(language.Und)

// Slug normalizes a migration name for use in file names: unicode
// normalization, lower case, and everything outside [a-z0-9] collapsed to
// underscores.
func Slug(name string) string {
	s := norm.NFKC.String(name)
	s = slugCaser.String(s)
	s = slugRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func fingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read migration file: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
