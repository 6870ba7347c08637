package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yday/internal/formatter"
	"github.com/desertthunder/yday/internal/metrics"
	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/shared"
	"github.com/desertthunder/yday/internal/tasks"
)

const maxUploadBody = 1 << 20

// releaseRef is a release id sent as a JSON string or number.
type releaseRef string

func (r *releaseRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = releaseRef(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if i, err := n.Int64(); err == nil {
			*r = releaseRef(strconv.FormatInt(i, 10))
		} else {
			*r = releaseRef(n.String())
		}
		return nil
	}
}

type uploadBody struct {
	Username string       `json:"username"`
	Token    string       `json:"token"`
	Releases []releaseRef `json:"releases"`
	Folder   string       `json:"folder"`
}

type uploadResponse struct {
	Error   string             `json:"error,omitempty"`
	Results []formatter.Record `json:"results,omitempty"`
}

// UploadHandlerOpts configures an [UploadHandler].
type UploadHandlerOpts struct {
	DefaultFolder string        // Folder used when the request names none
	Timeout       time.Duration // Deadline for a whole upload; zero means none
	Logger        *log.Logger
}

// UploadHandler serves POST /api/upload-releases.
//
// Each entry in results carries status as the outcome name (AlreadyPresent, Added
// or Failed). The human-readable phrase that earlier clients read from status is
// in message.
type UploadHandler struct {
	engine tasks.Reconciler
	opts   UploadHandlerOpts
}

// NewUploadHandler creates an upload handler backed by engine.
func NewUploadHandler(engine tasks.Reconciler, opts UploadHandlerOpts) *UploadHandler {
	if opts.DefaultFolder == "" {
		opts.DefaultFolder = models.DefaultFolderName
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &UploadHandler{engine: engine, opts: opts}
}

// Routes returns the HTTP routes this handler serves.
func (h *UploadHandler) Routes() []string {
	return []string{"/api/upload-releases"}
}

// ServeHTTP validates the body, runs the upload and writes one result per requested release.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body uploadBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBody))
	if err := dec.Decode(&body); err != nil {
		metrics.RecordUpload("invalid")
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	req := models.UploadRequest{
		Account:    models.Account{Username: strings.TrimSpace(body.Username), Token: strings.TrimSpace(body.Token)},
		FolderName: strings.TrimSpace(body.Folder),
		ItemIDs:    make([]string, len(body.Releases)),
	}
	if req.FolderName == "" {
		req.FolderName = h.opts.DefaultFolder
	}
	for i, id := range body.Releases {
		req.ItemIDs[i] = string(id)
	}

	ctx := r.Context()
	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}

	result, err := h.engine.Run(ctx, req, nil)
	if result != nil {
		w.Header().Set("X-Run-ID", result.RunID)
	}

	status, label := statusFor(err)
	metrics.RecordUpload(label)
	if err == nil {
		writeJSON(w, status, uploadResponse{Results: formatter.Records(result.Outcomes)})
		return
	}

	h.opts.Logger.Warn("upload failed", "user", req.Account.Username, "status", status, "error", err)
	resp := uploadResponse{Error: err.Error()}
	if result != nil {
		resp.Results = formatter.Records(result.Outcomes)
	}
	writeJSON(w, status, resp)
}

// statusFor maps an engine error to an HTTP status and a metrics label.
func statusFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, "ok"
	case errors.Is(err, shared.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	case errors.Is(err, shared.ErrRemoteUnavailable), errors.Is(err, shared.ErrFolderCreateFailed):
		return http.StatusBadGateway, "remote_error"
	default:
		return http.StatusInternalServerError, "error"
	}
}

// HealthHandler answers liveness probes.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
