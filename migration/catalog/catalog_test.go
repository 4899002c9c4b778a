package catalog_test

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/chmigrate/chmigrate/migration/catalog"
)

func writeMigration(c *qt.C, dir string, name, content string) {
	c.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
	c.Assert(err, qt.IsNil)
}

func TestRead_Pairs(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	writeMigration(c, dir, "00001_create_users.up.sql", "CREATE TABLE users (id UInt32) Engine=MergeTree ORDER BY (id)")
	writeMigration(c, dir, "00001_create_users.down.sql", "DROP TABLE users")
	writeMigration(c, dir, "00002_create_events.up.sql", "CREATE TABLE events (id UInt32) Engine=MergeTree ORDER BY (id)")
	writeMigration(c, dir, "00002_create_events.down.sql", "DROP TABLE events")
	writeMigration(c, dir, "notes.txt", "ignored")

	files, err := catalog.Read(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(files, qt.HasLen, 2)

	f := files[1]
	c.Assert(f.Version, qt.Equals, 1)
	c.Assert(f.Name, qt.Equals, "create_users")
	c.Assert(f.UpFile, qt.Equals, "00001_create_users.up.sql")
	c.Assert(f.DownFile, qt.Equals, "00001_create_users.down.sql")

	sum := md5.Sum([]byte("DROP TABLE users"))
	c.Assert(f.DownFingerprint, qt.Equals, hex.EncodeToString(sum[:]))
}

func TestRead_CreatesDirectory(t *testing.T) {
	c := qt.New(t)
	dir := filepath.Join(t.TempDir(), "migrations")

	files, err := catalog.Read(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(files, qt.HasLen, 0)

	info, err := os.Stat(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(info.IsDir(), qt.IsTrue)

	// Reading again must not fail on the existing directory.
	_, err = catalog.Read(dir)
	c.Assert(err, qt.IsNil)
}

func TestRead_OrphanDown(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	writeMigration(c, dir, "00001_init.up.sql", "SELECT 1")
	writeMigration(c, dir, "00001_init.down.sql", "SELECT 1")
	writeMigration(c, dir, "00002_extra.down.sql", "SELECT 2")

	_, err := catalog.Read(dir)
	c.Assert(err, qt.ErrorIs, catalog.ErrOrphanDown)
}

func TestRead_BrokenSequence(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	writeMigration(c, dir, "00001_first.up.sql", "SELECT 1")
	writeMigration(c, dir, "00001_first.down.sql", "SELECT 1")
	writeMigration(c, dir, "00003_third.up.sql", "SELECT 3")
	writeMigration(c, dir, "00003_third.down.sql", "SELECT 3")

	_, err := catalog.Read(dir)
	c.Assert(err, qt.ErrorIs, catalog.ErrBrokenSequence)
}

func TestRead_SequenceMustStartAtOne(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	writeMigration(c, dir, "00002_second.up.sql", "SELECT 2")
	writeMigration(c, dir, "00002_second.down.sql", "SELECT 2")

	_, err := catalog.Read(dir)
	c.Assert(err, qt.ErrorIs, catalog.ErrBrokenSequence)
}

func TestRead_FingerprintDrift(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	writeMigration(c, dir, "00001_init.up.sql", "SELECT 1")
	writeMigration(c, dir, "00001_init.down.sql", "SELECT 1")

	before, err := catalog.Read(dir)
	c.Assert(err, qt.IsNil)

	writeMigration(c, dir, "00001_init.up.sql", "SELECT 1 -- edited")

	after, err := catalog.Read(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(after[1].UpFingerprint, qt.Not(qt.Equals), before[1].UpFingerprint)
	c.Assert(after[1].DownFingerprint, qt.Equals, before[1].DownFingerprint)
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		filename  string
		version   int
		name      string
		direction string
		wantErr   bool
	}{
		{filename: "00001_create_users.up.sql", version: 1, name: "create_users", direction: "up"},
		{filename: "00042_drop_index.down.sql", version: 42, name: "drop_index", direction: "down"},
		{filename: "00002_dotted.name.up.sql", version: 2, name: "dotted.name", direction: "up"},
		{filename: "README.md", wantErr: true},
		{filename: "create_users.up.sql", wantErr: true},
		{filename: "00001_missing_direction.sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			c := qt.New(t)

			version, name, direction, err := catalog.ParseFileName(tt.filename)
			if tt.wantErr {
				c.Assert(err, qt.IsNotNil)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(version, qt.Equals, tt.version)
			c.Assert(name, qt.Equals, tt.name)
			c.Assert(direction, qt.Equals, tt.direction)
		})
	}
}

func TestCreate(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	upFile, downFile, err := catalog.Create(dir, 1, "Add Users Table")
	c.Assert(err, qt.IsNil)
	c.Assert(upFile, qt.Equals, "00001_add_users_table.up.sql")
	c.Assert(downFile, qt.Equals, "00001_add_users_table.down.sql")

	files, err := catalog.Read(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(files, qt.HasLen, 1)
	c.Assert(files[1].Name, qt.Equals, "add_users_table")
	c.Assert(catalog.NextVersion(files), qt.Equals, 2)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already clean", in: "create_users", want: "create_users"},
		{name: "mixed case and spaces", in: "Add Users Table", want: "add_users_table"},
		{name: "punctuation", in: "fix: drop/rename cols!", want: "fix_drop_rename_cols"},
		{name: "leading and trailing junk", in: "--weird--", want: "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(catalog.Slug(tt.in), qt.Equals, tt.want)
		})
	}
}
