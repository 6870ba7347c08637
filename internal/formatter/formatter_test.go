package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/shared"
	th "github.com/desertthunder/yday/internal/testing"
)

var outcomes = []models.ItemOutcome{
	{ItemID: "249504", Status: models.Added, Detail: "Never Gonna Give You Up"},
	{ItemID: "1", Status: models.AlreadyPresent},
	{ItemID: "0", Status: models.Failed, Detail: "discogs API error (status 404): Release not found."},
}

func TestRecords(t *testing.T) {
	t.Run("places detail by status", func(t *testing.T) {
		records := Records(outcomes)
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0].Title != "Never Gonna Give You Up" || records[0].Error != "" {
			t.Errorf("unexpected added record %+v", records[0])
		}
		if records[1].Title != "" || records[1].Error != "" || records[1].Message != "Already exists in collection" {
			t.Errorf("unexpected already present record %+v", records[1])
		}
		if records[2].Error == "" || records[2].Title != "" {
			t.Errorf("unexpected failed record %+v", records[2])
		}
	})

	t.Run("json shape", func(t *testing.T) {
		data, err := json.Marshal(Records(outcomes[:1]))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		want := `[{"releaseId":"249504","status":"Added","message":"Added successfully","title":"Never Gonna Give You Up"}]`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})

	t.Run("empty input is an empty slice", func(t *testing.T) {
		if r := Records(nil); r == nil || len(r) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", r)
		}
	})
}

func TestSummarize(t *testing.T) {
	s := Summarize(outcomes)
	if s.Added != 1 || s.AlreadyPresent != 1 || s.Failed != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.String() != "1 added, 1 already in collection, 1 failed" {
		t.Errorf("unexpected summary string %q", s.String())
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON("Uncategorized", outcomes)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var report Report
		if err := json.Unmarshal(data, &report); err != nil {
			t.Fatalf("report is not valid JSON: %v", err)
		}
		if report.Folder != "Uncategorized" || report.Summary.Added != 1 || len(report.Results) != 3 {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(outcomes)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Release ID,Status,Message,Title,Error\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "249504,Added,Added successfully,Never Gonna Give You Up,") {
			t.Errorf("CSV missing added row, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 4 {
			t.Errorf("expected 4 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("Wants", []models.ItemOutcome{
			{ItemID: "7", Status: models.Added, Detail: "A | B"},
		})
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# Upload to Wants\n") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Added**: 1") {
			t.Errorf("Markdown missing summary")
		}
		if !strings.Contains(output, `| 1 | 7 | Added successfully | A \| B |`) {
			t.Errorf("Markdown row not escaped, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText("Uncategorized", outcomes)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Folder: Uncategorized") {
			t.Errorf("text missing folder")
		}
		if !strings.Contains(output, "1. 249504 - Added successfully: Never Gonna Give You Up") {
			t.Errorf("text missing added line, got: %s", output)
		}
		if !strings.Contains(output, "2. 1 - Already exists in collection\n") {
			t.Errorf("text missing already present line, got: %s", output)
		}
	})

	t.Run("Export", func(t *testing.T) {
		tests := []struct {
			format string
			prefix string
		}{
			{"json", "{"},
			{"", "{"},
			{"CSV", "Release ID"},
			{"md", "# Upload"},
			{"markdown", "# Upload"},
			{"txt", "Folder:"},
		}
		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				data, err := Export(tt.format, "Uncategorized", outcomes)
				if err != nil {
					t.Fatalf("Export(%q) failed: %v", tt.format, err)
				}
				if !strings.HasPrefix(string(data), tt.prefix) {
					t.Errorf("Export(%q) = %q..., want prefix %q", tt.format, string(data)[:10], tt.prefix)
				}
			})
		}

		t.Run("unsupported", func(t *testing.T) {
			if _, err := Export("xml", "x", outcomes); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}

func TestWriteReport(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "run.csv")
		if err := WriteReport(path, FormatCSV, "Uncategorized", outcomes); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "249504") {
			t.Errorf("report missing release, got: %s", content)
		}
	})

	t.Run("fails when parent is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := WriteReport(filepath.Join(blocker, "run.json"), FormatJSON, "Uncategorized", outcomes); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("bad format writes nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.xml")
		if err := WriteReport(path, "xml", "Uncategorized", outcomes); err == nil {
			t.Error("expected error")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file")
		}
	})
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"out.csv":      FormatCSV,
		"out.MD":       FormatMarkdown,
		"out.markdown": FormatMarkdown,
		"out.txt":      FormatText,
		"out.json":     FormatJSON,
		"out":          FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestTables(t *testing.T) {
	t.Run("RenderTable", func(t *testing.T) {
		if RenderTable(nil, nil) != "" {
			t.Error("expected empty output without headers")
		}

		out := RenderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}})
		if !strings.Contains(out, "╭") {
			t.Errorf("expected rounded style, got:\n%s", out)
		}
		for _, s := range []string{"A", "B", "1", "2", "3"} {
			if !strings.Contains(out, s) {
				t.Errorf("table missing %q", s)
			}
		}
	})

	t.Run("OutcomeTable", func(t *testing.T) {
		out := OutcomeTable(outcomes)
		if !strings.Contains(out, "Never Gonna Give You Up") || !strings.Contains(out, "Release not found.") {
			t.Errorf("outcome table missing details:\n%s", out)
		}
		if !strings.HasSuffix(out, "1 added, 1 already in collection, 1 failed") {
			t.Errorf("outcome table missing summary:\n%s", out)
		}
	})

	t.Run("PlanTable", func(t *testing.T) {
		out := PlanTable([]models.PlanEntry{{ItemID: "1", Action: models.Skip}, {ItemID: "2", Action: models.Add}})
		if !strings.Contains(out, "skip") || !strings.Contains(out, "add") {
			t.Errorf("plan table missing actions:\n%s", out)
		}
		if !strings.HasSuffix(out, "1 to add, 1 already in collection") {
			t.Errorf("plan table missing summary:\n%s", out)
		}
	})

	t.Run("FolderTable", func(t *testing.T) {
		out := FolderTable([]models.Folder{{ID: 1, Name: "Uncategorized", Count: 12}})
		if !strings.Contains(out, "Uncategorized") || !strings.Contains(out, "12") {
			t.Errorf("folder table missing row:\n%s", out)
		}
	})
}
