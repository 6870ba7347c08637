// Package ui implements an interactive terminal interface for uploads using bubbletea's Elm architecture.
//
// The TUI walks through one upload:
//  1. LoadingView : dry run of the request while a spinner runs
//  2. PlanView : browse each release with its action (already in collection or will be added)
//  3. ConfirmView : confirm the upload
//  4. UploadView : live progress while releases are added one per second
//  5. ResultView : summary counts and failed releases
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the upload engine, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
