// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/yday/internal/models"
)

// Call is one recorded request against a [StubCatalog].
type Call struct {
	Op       string
	FolderID int64
	Page     int
	PerPage  int
	ItemID   string
	At       time.Time
}

// StubCatalog is an in-memory stand-in for the remote collection service.
//
// Items are held per folder and paginated on request. Adding an id that is already
// filed in the folder fails, so a second successful add of the same id is impossible.
type StubCatalog struct {
	mu sync.Mutex

	Folders []models.Folder
	Items   map[int64][]models.Item
	Titles  map[string]string

	// Clock timestamps each call when set.
	Clock interface{ Now() time.Time }

	ListFoldersErr error
	CreateErr      error
	PageErr        map[int]error
	AddErr         map[string]error
	// ReportedPages overrides the total page count reported on a given page.
	ReportedPages map[int]int
	// OnAdd runs before each add is applied.
	OnAdd func(itemID string)

	calls  []Call
	nextID int64
}

// NewStubCatalog creates a catalog with the given folders and no items.
func NewStubCatalog(folders ...models.Folder) *StubCatalog {
	var next int64
	for _, f := range folders {
		next = max(next, f.ID)
	}
	return &StubCatalog{
		Folders: folders,
		Items:   make(map[int64][]models.Item),
		Titles:  make(map[string]string),
		PageErr: make(map[int]error),
		AddErr:  make(map[string]error),
		nextID:  next,
	}
}

// Seed files ids into folderID without recording calls.
func (s *StubCatalog) Seed(folderID int64, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.Items[folderID] = append(s.Items[folderID], models.Item{ID: id, Title: s.Titles[id]})
	}
}

func (s *StubCatalog) record(c Call) {
	if s.Clock != nil {
		c.At = s.Clock.Now()
	}
	s.calls = append(s.calls, c)
}

func (s *StubCatalog) ListFolders(ctx context.Context, account models.Account) ([]models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: "ListFolders"})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.ListFoldersErr != nil {
		return nil, s.ListFoldersErr
	}
	return slices.Clone(s.Folders), nil
}

func (s *StubCatalog) CreateFolder(ctx context.Context, account models.Account, name string) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: "CreateFolder"})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.nextID++
	folder := models.Folder{ID: s.nextID, Name: name}
	s.Folders = append(s.Folders, folder)
	return &folder, nil
}

func (s *StubCatalog) ListItems(ctx context.Context, account models.Account, folderID int64, page, perPage int) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: "ListItems", FolderID: folderID, Page: page, PerPage: perPage})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.PageErr[page]; err != nil {
		return nil, err
	}
	if perPage <= 0 {
		return nil, fmt.Errorf("invalid per_page %d", perPage)
	}

	items := s.Items[folderID]
	total := (len(items) + perPage - 1) / perPage
	if n, ok := s.ReportedPages[page]; ok {
		total = n
	}

	start := min((page-1)*perPage, len(items))
	end := min(start+perPage, len(items))
	return &models.Page{Number: page, TotalPages: total, Items: slices.Clone(items[start:end])}, nil
}

func (s *StubCatalog) AddItem(ctx context.Context, account models.Account, folderID int64, itemID string) (*models.Item, error) {
	if s.OnAdd != nil {
		s.OnAdd(itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: "AddItem", FolderID: folderID, ItemID: itemID})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.AddErr[itemID]; err != nil {
		return nil, err
	}
	if slices.ContainsFunc(s.Items[folderID], func(it models.Item) bool { return it.ID == itemID }) {
		return nil, fmt.Errorf("release %s already in folder %d", itemID, folderID)
	}

	item := models.Item{ID: itemID, Title: s.Titles[itemID]}
	s.Items[folderID] = append(s.Items[folderID], item)
	return &item, nil
}

// Calls returns every recorded call in order.
func (s *StubCatalog) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallsTo returns the recorded calls for one operation.
func (s *StubCatalog) CallsTo(op string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether itemID is filed in folderID.
func (s *StubCatalog) Contains(folderID int64, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.Items[folderID], func(it models.Item) bool { return it.ID == itemID })
}

// FakeClock is a manually advanced clock. Sleep advances time instantly.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// OnSleep runs after each non-zero sleep has advanced the clock.
	OnSleep func(d time.Duration)
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleep advances the clock by d, failing first if ctx is already done.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()

	if c.OnSleep != nil {
		c.OnSleep(d)
	}
	return ctx.Err()
}

// Sleeps returns every non-zero sleep duration in order.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sleeps)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
