package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yday/internal/services"
	"github.com/desertthunder/yday/internal/shared"
	"github.com/desertthunder/yday/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	engine     tasks.Reconciler
	ownsEngine bool
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	getenv     func(string) string
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalog and Engine are built from the loaded config when nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	Engine     tasks.Reconciler
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Getenv     func(string) string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		engine:     opts.Engine,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		getenv:     opts.Getenv,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, uploadCommand, planCommand, foldersCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config, overlays the environment and
// builds the Discogs client and upload engine. A missing file falls back to defaults.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			cfg, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = cfg
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	if err := r.config.ApplyEnv(r.getenv); err != nil {
		return ctx, err
	}
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	r.init()
	return ctx, nil
}

func (r *Runner) init() {
	if r.catalog == nil {
		r.catalog = services.NewDiscogsService(r.config.Discogs.BaseURL,
			services.WithUserAgent(r.config.Discogs.UserAgent),
			services.WithTimeout(r.config.Discogs.TimeoutDuration()),
		)
	}
	if r.engine == nil {
		r.engine = tasks.NewUploadEngine(r.catalog, tasks.WithLogger(r.logger))
		r.ownsEngine = true
	}
}

// SetLogger replaces the logger, rebuilding the engine when the runner created it.
func (r *Runner) SetLogger(l *log.Logger) {
	l.SetLevel(r.logger.GetLevel())
	r.logger = l
	if r.ownsEngine {
		r.engine = tasks.NewUploadEngine(r.catalog, tasks.WithLogger(l))
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
