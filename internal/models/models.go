// package models defines the request-scoped data model for collection uploads
package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/yday/internal/shared"
)

// DefaultFolderName is the collection folder releases are filed into when none is given.
const DefaultFolderName = "Uncategorized"

// Account identifies a Discogs user and the personal access token used for their requests.
type Account struct {
	Username string
	Token    string
}

// String renders the account for logs. The token is never included.
func (a Account) String() string {
	return a.Username
}

// Validate reports whether both username and token are present.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("%w: username is required", shared.ErrInvalidRequest)
	}
	if strings.TrimSpace(a.Token) == "" {
		return fmt.Errorf("%w: token is required", shared.ErrInvalidRequest)
	}
	return nil
}

// Folder is a named container in a user's collection.
type Folder struct {
	ID    int64
	Name  string
	Count int
}

// Item is a single release filed in a folder.
type Item struct {
	ID    string
	Title string
}

// Page is one page of a folder listing.
type Page struct {
	Number     int
	TotalPages int
	Items      []Item
}

// UploadRequest asks for ItemIDs to be present in the named folder.
type UploadRequest struct {
	Account    Account
	FolderName string
	ItemIDs    []string
}

// Validate checks required fields, trims ids and fills in the default folder name.
func (r *UploadRequest) Validate() error {
	if err := r.Account.Validate(); err != nil {
		return err
	}
	if len(r.ItemIDs) == 0 {
		return fmt.Errorf("%w: at least one release id is required", shared.ErrInvalidRequest)
	}

	ids := make([]string, len(r.ItemIDs))
	for i, id := range r.ItemIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("%w: release id at position %d is empty", shared.ErrInvalidRequest, i)
		}
		ids[i] = id
	}
	r.ItemIDs = ids

	if strings.TrimSpace(r.FolderName) == "" {
		r.FolderName = DefaultFolderName
	}
	return nil
}

// Action is what the planner decided to do with a requested id.
type Action int

const (
	Skip Action = iota
	Add
)

func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case Add:
		return "add"
	default:
		return ""
	}
}

// PlanEntry is a requested id tagged with its action, in request order.
type PlanEntry struct {
	ItemID string
	Action Action
}

// Status is the final per-item result.
type Status int

const (
	AlreadyPresent Status = iota
	Added
	Failed
)

func (s Status) String() string {
	switch s {
	case AlreadyPresent:
		return "AlreadyPresent"
	case Added:
		return "Added"
	case Failed:
		return "Failed"
	default:
		return ""
	}
}

// Message is the human-readable phrase shown next to an outcome.
func (s Status) Message() string {
	switch s {
	case AlreadyPresent:
		return "Already exists in collection"
	case Added:
		return "Added successfully"
	case Failed:
		return "Failed to add"
	default:
		return ""
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if name := s.String(); name != "" {
		return []byte(name), nil
	}
	return nil, fmt.Errorf("unknown status %d", int(s))
}

// ItemOutcome records what happened to one requested id.
//
// Detail holds the release title for [Added] and the error message for [Failed].
// Err is set for [Failed] and wraps shared.ErrItemAddFailed around the cause.
type ItemOutcome struct {
	ItemID string
	Status Status
	Detail string
	Err    error `json:"-"`
}
