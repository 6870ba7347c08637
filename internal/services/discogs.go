// Discogs API implementation of [Catalog]
//
// Response types based on https://www.discogs.com/developers#page:user-collection
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/yday/internal/metrics"
	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultDiscogsBaseURL   = "https://api.discogs.com"
	defaultDiscogsUserAgent = "yday/0.1 +https://yday.ai"
)

// APIError is a non-2xx response from Discogs.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discogs API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("discogs API error: status %d", e.StatusCode)
}

// releaseID accepts a Discogs id encoded as either a JSON number or a string and keeps its decimal text.
type releaseID string

func (r *releaseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = releaseID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*r = releaseID(strconv.FormatInt(i, 10))
		return nil
	}
	*r = releaseID(n.String())
	return nil
}

// DiscogsFolder is a collection folder as returned by Discogs.
type DiscogsFolder struct {
	ID          *int64 `json:"id"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
	ResourceURL string `json:"resource_url"`
}

type discogsFolderList struct {
	Folders []DiscogsFolder `json:"folders"`
}

// DiscogsPagination is the pagination block of a paged Discogs response.
type DiscogsPagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// DiscogsBasicInformation is the release summary embedded in collection entries.
type DiscogsBasicInformation struct {
	ID    releaseID `json:"id"`
	Title string    `json:"title"`
	Year  int       `json:"year"`
}

// DiscogsCollectionRelease is one release instance filed in a folder.
type DiscogsCollectionRelease struct {
	ID               releaseID               `json:"id"`
	InstanceID       int64                   `json:"instance_id"`
	FolderID         int64                   `json:"folder_id"`
	DateAdded        string                  `json:"date_added"`
	BasicInformation DiscogsBasicInformation `json:"basic_information"`
}

// DiscogsReleasePage is a page of a folder listing.
type DiscogsReleasePage struct {
	Pagination *DiscogsPagination         `json:"pagination"`
	Releases   []DiscogsCollectionRelease `json:"releases"`
}

// DiscogsAddResponse is returned when a release is added to a folder.
type DiscogsAddResponse struct {
	InstanceID       int64                    `json:"instance_id"`
	ResourceURL      string                   `json:"resource_url"`
	BasicInformation *DiscogsBasicInformation `json:"basic_information"`
}

// DiscogsService implements [Catalog] against the Discogs REST API.
//
// The personal token travels with each call through an [oauth2.Transport]; the service itself is safe for concurrent use.
type DiscogsService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Catalog = (*DiscogsService)(nil)

// Option configures a DiscogsService.
type Option func(*DiscogsService)

// WithHTTPClient overrides the base HTTP client. Its transport and timeout are reused for every account.
func WithHTTPClient(client *http.Client) Option {
	return func(d *DiscogsService) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header Discogs requires on every call.
func WithUserAgent(ua string) Option {
	return func(d *DiscogsService) {
		if ua = strings.TrimSpace(ua); ua != "" {
			d.userAgent = ua
		}
	}
}

// WithTimeout sets the per-call timeout on the base client.
func WithTimeout(timeout time.Duration) Option {
	return func(d *DiscogsService) {
		if timeout > 0 {
			client := *d.httpClient
			client.Timeout = timeout
			d.httpClient = &client
		}
	}
}

// NewDiscogsService creates a Discogs client rooted at baseURL.
func NewDiscogsService(baseURL string, opts ...Option) *DiscogsService {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultDiscogsBaseURL
	}

	svc := &DiscogsService{
		baseURL:    baseURL,
		userAgent:  defaultDiscogsUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Name returns the service name.
func (d *DiscogsService) Name() string {
	return "Discogs"
}

// TokenSource returns the static token source for an account's personal access token.
//
// Discogs expects "Authorization: Discogs token=<token>".
func TokenSource(account models.Account) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: "token=" + account.Token,
		TokenType:   "Discogs",
	})
}

// clientFor builds an HTTP client that authorizes as account.
func (d *DiscogsService) clientFor(account models.Account) *http.Client {
	base := d.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   d.httpClient.Timeout,
		Transport: &oauth2.Transport{Source: TokenSource(account), Base: base},
	}
}

func (d *DiscogsService) doRequest(ctx context.Context, account models.Account, op, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := d.clientFor(account).Do(req)
	if err != nil {
		metrics.RecordRemoteCall(op, time.Since(start), false)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	metrics.RecordRemoteCall(op, time.Since(start), ok)

	if !ok {
		var errResp struct {
			Message string `json:"message"`
		}
		// Non-JSON error bodies leave Message empty and the error reports the status alone.
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			errResp.Message = ""
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrUnexpectedResponse, err)
		}
	}

	return nil
}

func foldersPath(username string) string {
	return fmt.Sprintf("/users/%s/collection/folders", url.PathEscape(username))
}

func (f DiscogsFolder) toModel() (models.Folder, error) {
	if f.ID == nil {
		return models.Folder{}, fmt.Errorf("%w: folder %q has no id", shared.ErrUnexpectedResponse, f.Name)
	}
	return models.Folder{ID: *f.ID, Name: f.Name, Count: f.Count}, nil
}

// ListFolders retrieves the account's collection folders.
//
// Calls GET /users/{username}/collection/folders.
func (d *DiscogsService) ListFolders(ctx context.Context, account models.Account) ([]models.Folder, error) {
	var resp discogsFolderList
	if err := d.doRequest(ctx, account, "list_folders", http.MethodGet, foldersPath(account.Username), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Folders == nil {
		return nil, fmt.Errorf("%w: folder list missing", shared.ErrUnexpectedResponse)
	}

	folders := make([]models.Folder, 0, len(resp.Folders))
	for _, f := range resp.Folders {
		folder, err := f.toModel()
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

// CreateFolder creates a collection folder.
//
// Calls POST /users/{username}/collection/folders.
func (d *DiscogsService) CreateFolder(ctx context.Context, account models.Account, name string) (*models.Folder, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: name}

	var resp DiscogsFolder
	if err := d.doRequest(ctx, account, "create_folder", http.MethodPost, foldersPath(account.Username), body, &resp); err != nil {
		return nil, err
	}

	folder, err := resp.toModel()
	if err != nil {
		return nil, err
	}
	if folder.Name == "" {
		folder.Name = name
	}
	return &folder, nil
}

// ListItems retrieves one page of releases in a folder.
//
// Calls GET /users/{username}/collection/folders/{folder_id}/releases?page={page}&per_page={perPage}.
func (d *DiscogsService) ListItems(ctx context.Context, account models.Account, folderID int64, page, perPage int) (*models.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	endpoint := fmt.Sprintf("%s/%d/releases?%s", foldersPath(account.Username), folderID, q.Encode())

	var resp DiscogsReleasePage
	if err := d.doRequest(ctx, account, "list_items", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Pagination == nil {
		return nil, fmt.Errorf("%w: page %d has no pagination", shared.ErrUnexpectedResponse, page)
	}
	if resp.Pagination.Pages < 0 {
		return nil, fmt.Errorf("%w: negative page count %d", shared.ErrUnexpectedResponse, resp.Pagination.Pages)
	}

	items := make([]models.Item, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		id := r.ID
		if id == "" {
			id = r.BasicInformation.ID
		}
		if id == "" {
			return nil, fmt.Errorf("%w: release instance %d has no id", shared.ErrUnexpectedResponse, r.InstanceID)
		}
		items = append(items, models.Item{ID: string(id), Title: r.BasicInformation.Title})
	}

	return &models.Page{
		Number:     resp.Pagination.Page,
		TotalPages: resp.Pagination.Pages,
		Items:      items,
	}, nil
}

// AddItem adds a release to a folder.
//
// Calls POST /users/{username}/collection/folders/{folder_id}/releases/{release_id}.
func (d *DiscogsService) AddItem(ctx context.Context, account models.Account, folderID int64, itemID string) (*models.Item, error) {
	endpoint := fmt.Sprintf("%s/%d/releases/%s", foldersPath(account.Username), folderID, url.PathEscape(itemID))

	var resp DiscogsAddResponse
	if err := d.doRequest(ctx, account, "add_item", http.MethodPost, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.InstanceID == 0 && resp.BasicInformation == nil {
		return nil, fmt.Errorf("%w: add response has no instance", shared.ErrUnexpectedResponse)
	}

	item := &models.Item{ID: itemID}
	if resp.BasicInformation != nil {
		item.Title = resp.BasicInformation.Title
	}
	return item, nil
}

// IsStatus reports whether err is an [APIError] with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
