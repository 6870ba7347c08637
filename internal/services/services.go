// package services defines interface Catalog for interacting with the remote collection API
//
// Discogs
package services

import (
	"context"

	"github.com/desertthunder/yday/internal/models"
)

// Catalog is the remote collection service the upload engine reconciles against.
//
// Every call receives the account explicitly; implementations hold no per-user state.
type Catalog interface {
	// ListFolders returns every collection folder for the account, in service order.
	ListFolders(ctx context.Context, account models.Account) ([]models.Folder, error)

	// CreateFolder creates a folder with the given name and returns it.
	CreateFolder(ctx context.Context, account models.Account, name string) (*models.Folder, error)

	// ListItems returns one page of releases filed in the folder. Pages start at 1.
	ListItems(ctx context.Context, account models.Account, folderID int64, page, perPage int) (*models.Page, error)

	// AddItem files a release into the folder and returns it with its title when the service reports one.
	AddItem(ctx context.Context, account models.Account, folderID int64, itemID string) (*models.Item, error)
}
