package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/yday/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the default configuration to --output, or the --config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		return fmt.Errorf("%w: --output or --config is required", shared.ErrMissingArgument)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Export DISCOGS_USERNAME and DISCOGS_TOKEN (or put them in .env)\n")
	r.writePlain("2. Run 'yday folders' to check your credentials\n")
	r.writePlain("3. Run 'yday plan <release id...>' to preview an upload\n")

	return nil
}
