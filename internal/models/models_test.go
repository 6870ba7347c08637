package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/yday/internal/shared"
)

func TestUploadRequest_Validate(t *testing.T) {
	account := Account{Username: "digger", Token: "secret"}

	tests := []struct {
		name       string
		req        UploadRequest
		wantErr    bool
		wantIDs    []string
		wantFolder string
	}{
		{
			name:       "valid request gets default folder",
			req:        UploadRequest{Account: account, ItemIDs: []string{"1", "2"}},
			wantIDs:    []string{"1", "2"},
			wantFolder: DefaultFolderName,
		},
		{
			name:       "ids are trimmed",
			req:        UploadRequest{Account: account, FolderName: "Wants", ItemIDs: []string{" 10 ", "20\n"}},
			wantIDs:    []string{"10", "20"},
			wantFolder: "Wants",
		},
		{
			name:    "missing username",
			req:     UploadRequest{Account: Account{Token: "secret"}, ItemIDs: []string{"1"}},
			wantErr: true,
		},
		{
			name:    "missing token",
			req:     UploadRequest{Account: Account{Username: "digger"}, ItemIDs: []string{"1"}},
			wantErr: true,
		},
		{
			name:    "no ids",
			req:     UploadRequest{Account: account},
			wantErr: true,
		},
		{
			name:    "blank id",
			req:     UploadRequest{Account: account, ItemIDs: []string{"1", "  "}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidRequest) {
					t.Errorf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if fmt.Sprint(req.ItemIDs) != fmt.Sprint(tt.wantIDs) {
				t.Errorf("ItemIDs = %v, want %v", req.ItemIDs, tt.wantIDs)
			}
			if req.FolderName != tt.wantFolder {
				t.Errorf("FolderName = %q, want %q", req.FolderName, tt.wantFolder)
			}
		})
	}
}

func TestAccountString(t *testing.T) {
	a := Account{Username: "digger", Token: "super-secret"}
	if got := fmt.Sprintf("%v", a); got != "digger" {
		t.Errorf("Account formatted as %q, token must not appear", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status  Status
		name    string
		message string
	}{
		{AlreadyPresent, "AlreadyPresent", "Already exists in collection"},
		{Added, "Added", "Added successfully"},
		{Failed, "Failed", "Failed to add"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.status.String(), tt.name)
			}
			if tt.status.Message() != tt.message {
				t.Errorf("Message() = %q, want %q", tt.status.Message(), tt.message)
			}
			text, err := tt.status.MarshalText()
			if err != nil || string(text) != tt.name {
				t.Errorf("MarshalText() = %q, %v", text, err)
			}
		})
	}

	if _, err := Status(42).MarshalText(); err == nil {
		t.Error("expected error for unknown status")
	}
}
