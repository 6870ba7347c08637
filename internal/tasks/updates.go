package tasks

import (
	"fmt"

	"github.com/desertthunder/yday/internal/models"
)

// ProgressUpdate represents a progress event during an upload.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveFolder Phase = iota
	CreateFolder
	EnumeratePage
	PlanItems
	ApplyItem
	Complete
)

func (p Phase) String() string {
	switch p {
	case ResolveFolder:
		return "resolve_folder"
	case CreateFolder:
		return "create_folder"
	case EnumeratePage:
		return "enumerate_page"
	case PlanItems:
		return "plan"
	case ApplyItem:
		return "apply_item"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func resolvingFolderUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveFolder,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up folder %q...", name),
	}
}

func resolvedFolderUpdate(folder *models.Folder) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveFolder,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found folder: %s (ID: %d)", folder.Name, folder.ID),
		Data:    folder,
	}
}

func creatingFolderUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateFolder,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating folder %q...", name),
	}
}

func createdFolderUpdate(folder *models.Folder) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateFolder,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Folder created: %s (ID: %d)", folder.Name, folder.ID),
		Data:    folder,
	}
}

func enumeratePageUpdate(page, total, seen int) ProgressUpdate {
	if total < page {
		total = page
	}
	return ProgressUpdate{
		Phase:   EnumeratePage,
		Step:    page,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetched collection page (%d releases so far)", page, total, seen),
	}
}

func planUpdate(plan []models.PlanEntry) ProgressUpdate {
	adds := 0
	for _, e := range plan {
		if e.Action == models.Add {
			adds++
		}
	}
	return ProgressUpdate{
		Phase:   PlanItems,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d to add, %d already in collection", adds, len(plan)-adds),
		Data:    plan,
	}
}

func applyItemUpdate(step, total int, outcome models.ItemOutcome) ProgressUpdate {
	var msg string
	switch outcome.Status {
	case models.Added:
		msg = fmt.Sprintf("[%d/%d] ✓ %s %s", step, total, outcome.ItemID, outcome.Detail)
	case models.Failed:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, outcome.ItemID, outcome.Detail)
	default:
		msg = fmt.Sprintf("[%d/%d] = %s already in collection", step, total, outcome.ItemID)
	}
	return ProgressUpdate{
		Phase:   ApplyItem,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}

func completeUpdate(result *Result) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %d added, %d already present, %d failed", result.Added, result.AlreadyPresent, result.Failed),
		Data:    result,
	}
}
