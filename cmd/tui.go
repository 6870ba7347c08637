package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/shared"
	"github.com/desertthunder/yday/internal/ui"
	"github.com/urfave/cli/v3"
)

// UploadTUI runs an upload inside the interactive terminal UI, then prints the result.
func (r *Runner) UploadTUI(ctx context.Context, cmd *cli.Command, req models.UploadRequest) error {
	if r.engine == nil {
		return fmt.Errorf("%w: upload engine not initialized", shared.ErrInvalidConfig)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(filepath.Join("tmp", "yday-tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	result, err := ui.Run(ctx, r.engine, req, cmd.Bool("yes"))
	if result != nil {
		if werr := r.finish(cmd, result, err); werr != nil {
			return werr
		}
	}
	return err
}
