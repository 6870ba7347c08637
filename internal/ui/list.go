package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/yday/internal/models"
)

var (
	_ list.Item = planItem{}
)

// planItem wraps [models.PlanEntry] to implement [list.Item].
type planItem struct {
	index int
	entry models.PlanEntry
}

func (i planItem) FilterValue() string { return i.entry.ItemID }
func (i planItem) Title() string       { return fmt.Sprintf("%d. Release %s", i.index+1, i.entry.ItemID) }
func (i planItem) Description() string {
	if i.entry.Action == models.Skip {
		return "already in collection"
	}
	return "will be added"
}

func planItems(plan []models.PlanEntry) []list.Item {
	items := make([]list.Item, len(plan))
	for i, e := range plan {
		items[i] = planItem{index: i, entry: e}
	}
	return items
}
