package formatter

import (
	"fmt"
	"strconv"

	"github.com/desertthunder/yday/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ColumnAlign is the horizontal alignment of a table column.
type ColumnAlign int

const (
	AlignLeft ColumnAlign = iota
	AlignRight
)

// RenderTable renders rows under headers with rounded borders. Short rows are padded.
func RenderTable(headers []string, rows [][]string, aligns ...ColumnAlign) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// OutcomeTable renders upload outcomes with a trailing summary line.
func OutcomeTable(outcomes []models.ItemOutcome) string {
	rows := make([][]string, 0, len(outcomes))
	for i, r := range Records(outcomes) {
		rows = append(rows, []string{strconv.Itoa(i + 1), r.ReleaseID, r.Message, detail(r)})
	}
	out := RenderTable([]string{"#", "Release", "Status", "Detail"}, rows, AlignRight, AlignRight, AlignLeft, AlignLeft)
	return out + "\n" + Summarize(outcomes).String()
}

// PlanTable renders a dry-run plan.
func PlanTable(plan []models.PlanEntry) string {
	rows := make([][]string, 0, len(plan))
	adds := 0
	for i, e := range plan {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.ItemID, e.Action.String()})
		if e.Action == models.Add {
			adds++
		}
	}
	out := RenderTable([]string{"#", "Release", "Action"}, rows, AlignRight, AlignRight, AlignLeft)
	return out + "\n" + fmt.Sprintf("%d to add, %d already in collection", adds, len(plan)-adds)
}

// FolderTable renders collection folders.
func FolderTable(folders []models.Folder) string {
	rows := make([][]string, 0, len(folders))
	for _, f := range folders {
		rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.Name, strconv.Itoa(f.Count)})
	}
	return RenderTable([]string{"ID", "Name", "Releases"}, rows, AlignRight, AlignLeft, AlignRight)
}
