// package formatter renders upload outcomes as reports (JSON, CSV, Markdown, plain text) and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/shared"
)

// Supported report formats
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists every supported report format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// Record is the wire and report form of a single [models.ItemOutcome].
type Record struct {
	ReleaseID string        `json:"releaseId"`
	Status    models.Status `json:"status"`
	Message   string        `json:"message"`
	Title     string        `json:"title,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// NewRecord converts an outcome, placing Detail in Title or Error according to the status.
func NewRecord(o models.ItemOutcome) Record {
	r := Record{ReleaseID: o.ItemID, Status: o.Status, Message: o.Status.Message()}
	switch o.Status {
	case models.Added:
		r.Title = o.Detail
	case models.Failed:
		r.Error = o.Detail
	}
	return r
}

// Records converts outcomes in order. The result is never nil.
func Records(outcomes []models.ItemOutcome) []Record {
	records := make([]Record, len(outcomes))
	for i, o := range outcomes {
		records[i] = NewRecord(o)
	}
	return records
}

// Summary counts outcomes by status.
type Summary struct {
	AlreadyPresent int `json:"alreadyPresent"`
	Added          int `json:"added"`
	Failed         int `json:"failed"`
}

// Summarize counts outcomes by status.
func Summarize(outcomes []models.ItemOutcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case models.AlreadyPresent:
			s.AlreadyPresent++
		case models.Added:
			s.Added++
		case models.Failed:
			s.Failed++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d added, %d already in collection, %d failed", s.Added, s.AlreadyPresent, s.Failed)
}

// Report is the document written by [ExportToJSON].
type Report struct {
	Folder  string   `json:"folder"`
	Summary Summary  `json:"summary"`
	Results []Record `json:"results"`
}

// ExportToJSON renders outcomes as an indented JSON report.
func ExportToJSON(folder string, outcomes []models.ItemOutcome) ([]byte, error) {
	return shared.MarshalJSON(Report{Folder: folder, Summary: Summarize(outcomes), Results: Records(outcomes)}, true)
}

// ExportToCSV renders outcomes as CSV with columns: Release ID, Status, Message, Title, Error
func ExportToCSV(outcomes []models.ItemOutcome) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Release ID", "Status", "Message", "Title", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range Records(outcomes) {
		record := []string{r.ReleaseID, r.Status.String(), r.Message, r.Title, r.Error}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders outcomes as a Markdown document with a summary and a results table.
func ExportToMarkdown(folder string, outcomes []models.ItemOutcome) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Upload to %s\n\n", folder))

	s := Summarize(outcomes)
	buf.WriteString(fmt.Sprintf("**Added**: %d\n", s.Added))
	buf.WriteString(fmt.Sprintf("**Already in collection**: %d\n", s.AlreadyPresent))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", s.Failed))

	buf.WriteString("## Releases\n\n")
	buf.WriteString("| # | Release | Status | Detail |\n")
	buf.WriteString("|---|---------|--------|--------|\n")
	for i, r := range Records(outcomes) {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, r.ReleaseID, r.Message, escapeCell(detail(r))))
	}

	return buf.Bytes(), nil
}

// ExportToText renders outcomes as plain text, one release per line.
func ExportToText(folder string, outcomes []models.ItemOutcome) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Folder: %s\n", folder))
	buf.WriteString(fmt.Sprintf("Releases: %d (%s)\n\n", len(outcomes), Summarize(outcomes)))

	for i, r := range Records(outcomes) {
		line := fmt.Sprintf("%d. %s - %s", i+1, r.ReleaseID, r.Message)
		if d := detail(r); d != "" {
			line += ": " + d
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// Export renders outcomes in the named format.
func Export(format, folder string, outcomes []models.ItemOutcome) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return ExportToJSON(folder, outcomes)
	case FormatCSV:
		return ExportToCSV(outcomes)
	case FormatMarkdown, "md":
		return ExportToMarkdown(folder, outcomes)
	case FormatText, "text":
		return ExportToText(folder, outcomes)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (use %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteReport renders outcomes and writes them to path, creating parent directories.
func WriteReport(path, format, folder string, outcomes []models.ItemOutcome) error {
	data, err := Export(format, folder, outcomes)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// FormatFromPath guesses a report format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt":
		return FormatText
	default:
		return FormatJSON
	}
}

func detail(r Record) string {
	if r.Error != "" {
		return r.Error
	}
	return r.Title
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
