package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/contactcrawl/internal/config"
	"github.com/nao1215/contactcrawl/internal/database"
	"github.com/nao1215/contactcrawl/internal/model"
)

// seedHistory stores two runs of one seed and one of another and returns
// the database directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, seed := range []string{"https://a.example/", "https://b.example/", "https://a.example/"} {
		result := model.NewCrawlResult(seed, 50)
		result.State = model.StateExhausted
		result.PagesAttempted = 2
		result.StartedAt = base.Add(time.Duration(i) * time.Hour)
		result.FinishedAt = result.StartedAt.Add(time.Second)
		result.Records = []model.ContactRecord{{
			SourceURL: seed + "contact",
			Emails:    []string{"shared@example.com"},
		}}
		if _, err := db.SaveCrawlResult(context.Background(), result); err != nil {
			t.Fatalf("SaveCrawlResult failed: %v", err)
		}
	}
	return dir
}

func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	t.Run("lists every run", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "Stored runs (3)") {
			t.Errorf("unexpected listing:\n%s", stdout)
		}
	})

	t.Run("lists runs of one seed as JSON", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--db-dir", seedHistory(t), "--json", "https://a.example/")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}

		var runs []database.RunMetadata
		if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(runs) != 2 || runs[0].Seed != "https://a.example/" || runs[0].Summary.Emails != 1 {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})

	t.Run("lists seeds", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--db-dir", seedHistory(t), "-L")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "Crawled seeds (2)") || !strings.Contains(stdout, "https://b.example/") {
			t.Errorf("unexpected seeds:\n%s", stdout)
		}
	})

	t.Run("shows a stored run", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--db-dir", seedHistory(t), "--id", "2")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "CONTACT CRAWL REPORT") || !strings.Contains(stdout, "https://b.example/") {
			t.Errorf("unexpected report:\n%s", stdout)
		}
	})

	t.Run("shows a stored run as Markdown", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--db-dir", seedHistory(t), "--id", "1", "-m")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "# Contact Crawl Report") {
			t.Errorf("unexpected report:\n%s", stdout)
		}
	})

	t.Run("finds a contact across runs", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--db-dir", seedHistory(t), "--find", "SHARED@example.com", "-j")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}

		var sightings []database.Sighting
		if err := json.Unmarshal([]byte(stdout), &sightings); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(sightings) != 3 || sightings[0].Kind != model.KindEmail {
			t.Errorf("unexpected sightings: %+v", sightings)
		}
	})

	t.Run("deletes a run", func(t *testing.T) {
		t.Parallel()

		dir := seedHistory(t)
		stdout, _, err := runCLI(t, "history", "--db-dir", dir, "--delete", "1")
		if err != nil || !strings.Contains(stdout, "Deleted run 1") {
			t.Fatalf("delete failed: %v, %q", err, stdout)
		}

		if _, _, err := runCLI(t, "history", "--db-dir", dir, "--delete", "1"); err == nil {
			t.Error("deleting a missing run should fail")
		}
	})

	t.Run("unknown run id is an error", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runCLI(t, "history", "--db-dir", seedHistory(t), "--id", "99"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("missing database is not an error", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runCLI(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No crawl history yet") {
			t.Errorf("unexpected output: %q", stdout)
		}
	})
}

func TestParseHistoryFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"plain listing", nil, false},
		{"seed listing", []string{"https://a.example/"}, false},
		{"find and id together", []string{"--find", "x@example.com", "--id", "1"}, true},
		{"seed with find", []string{"--find", "x@example.com", "https://a.example/"}, true},
		{"json and markdown together", []string{"-j", "-m"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewHistoryCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags failed: %v", err)
			}
			opts, err := parseHistoryFlags(cmd, cmd.Flags().Args())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.dbDir != config.XDGDataDir() {
				t.Errorf("dbDir = %q, want default", opts.dbDir)
			}
		})
	}
}
