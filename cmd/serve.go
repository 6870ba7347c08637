package main

import (
	"context"

	"github.com/desertthunder/yday/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP upload service until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		r.config.Server.Port = int(port)
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	srv := server.NewServer(server.ServerOpts{
		Config: r.config,
		Engine: r.engine,
		Logger: r.logger,
	})
	return srv.ListenAndServe(ctx)
}
