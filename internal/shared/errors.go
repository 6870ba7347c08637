package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Request errors, surfaced before any remote call is made
	ErrInvalidRequest = fmt.Errorf("invalid request")

	// Remote catalog errors
	ErrRemoteUnavailable  = fmt.Errorf("remote service unavailable")
	ErrFolderCreateFailed = fmt.Errorf("failed to create folder")
	ErrItemAddFailed      = fmt.Errorf("failed to add item")
	ErrUnexpectedResponse = fmt.Errorf("unexpected response shape")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
