package journal

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/postmigrate/internal/apperr"
	"github.com/starford/postmigrate/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "postmigrate-journal-*.db")
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrated(name, pubDate, sum string) models.Outcome {
	return models.Outcome{
		Filename:       name,
		Status:         models.StatusMigrated,
		Stage:          models.StageConverted,
		SourceChecksum: sum,
		OutputPath:     name,
		Title:          "Post " + name,
		PubDate:        pubDate,
		Tags:           []string{"go", "blog"},
		MigratedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRecordAndGet(t *testing.T) {
	db := testDB(t)
	o := migrated("2020-01-15-hello.md", "2020-01-15", "abc")
	o.Warnings = []string{"leftover tag"}
	if err := db.Record(o); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := db.Get("2020-01-15-hello.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.StatusMigrated || got.Stage != models.StageConverted {
		t.Errorf("status/stage = %s/%s", got.Status, got.Stage)
	}
	if got.Title != o.Title || got.PubDate != "2020-01-15" || got.SourceChecksum != "abc" {
		t.Errorf("unexpected row: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" {
		t.Errorf("tags = %v", got.Tags)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("warnings = %v", got.Warnings)
	}
	if !got.MigratedAt.Equal(o.MigratedAt) {
		t.Errorf("migrated_at = %v", got.MigratedAt)
	}
}

func TestRecordUpserts(t *testing.T) {
	db := testDB(t)
	_ = db.Record(migrated("a.md", "2020-01-01", "v1"))

	skipped := models.Outcome{
		Filename: "a.md",
		Status:   models.StatusSkipped,
		Reason:   apperr.ErrNoFrontmatter.Error(),
		Stage:    models.StageDateChecked,
	}
	if err := db.Record(skipped); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := db.Get("a.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.StatusSkipped || got.Reason != "no frontmatter found" {
		t.Errorf("row not replaced: %+v", got)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("tags = %#v, want empty slice", got.Tags)
	}
	if got.MigratedAt.IsZero() {
		t.Error("migrated_at not defaulted")
	}
}

func TestGetNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.Get("missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	db := testDB(t)
	_ = db.Record(migrated("2019-05-01-old.md", "2019-05-01", "1"))
	_ = db.Record(migrated("2021-07-04-new.md", "2021-07-04", "2"))
	_ = db.Record(models.Outcome{Filename: "notes.md", Status: models.StatusSkipped, Reason: "invalid filename format"})

	all, total, err := db.List("", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("total = %d, len = %d", total, len(all))
	}
	if all[0].Filename != "2021-07-04-new.md" {
		t.Errorf("first = %s, want newest post", all[0].Filename)
	}

	onlyMigrated, total, err := db.List(models.StatusMigrated, 1, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(onlyMigrated) != 1 || onlyMigrated[0].Filename != "2019-05-01-old.md" {
		t.Errorf("paged list = %+v (total %d)", onlyMigrated, total)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.Record(migrated("2020-01-01-terraform.md", "2020-01-01", "1"))
	_ = db.Record(migrated("2020-02-01-ruby.md", "2020-02-01", "2"))

	res, err := db.Search("terraform", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Filename != "2020-01-01-terraform.md" {
		t.Errorf("results = %+v", res)
	}

	res, _ = db.Search("blog", 10)
	if len(res) != 2 {
		t.Errorf("tag match len = %d, want 2", len(res))
	}
}

func TestChecksumsOnlyMigrated(t *testing.T) {
	db := testDB(t)
	_ = db.Record(migrated("a.md", "2020-01-01", "aaa"))
	_ = db.Record(models.Outcome{Filename: "b.md", Status: models.StatusSkipped, SourceChecksum: "bbb"})

	sums, err := db.Checksums()
	if err != nil {
		t.Fatalf("Checksums: %v", err)
	}
	if len(sums) != 1 || sums["a.md"] != "aaa" {
		t.Errorf("checksums = %v", sums)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	_ = db.Record(migrated("a.md", "2020-01-01", "aaa"))
	if err := db.Delete("a.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get("a.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("row still present: %v", err)
	}
	if err := db.Delete("a.md"); err != nil {
		t.Errorf("deleting missing row: %v", err)
	}
}
