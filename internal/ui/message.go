package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yday/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPreviewReady MsgKind = iota
	MsgProgressUpdate
	MsgUploadComplete
)

type previewData struct {
	preview *tasks.Preview
	err     error
}

type completeData struct {
	result *tasks.Result
	err    error
}

// previewReadyMsg is the constructor for [MsgPreviewReady]
func previewReadyMsg(preview *tasks.Preview, err error) Msg {
	return Msg{kind: MsgPreviewReady, data: previewData{preview, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// uploadCompleteMsg is the constructor for [MsgUploadComplete]
func uploadCompleteMsg(result *tasks.Result, err error) Msg {
	return Msg{kind: MsgUploadComplete, data: completeData{result, err}}
}
