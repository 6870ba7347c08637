package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/shared"
	"github.com/desertthunder/yday/internal/tasks"
	tu "github.com/desertthunder/yday/internal/testing"
)

func noEnv(string) string { return "" }

// newTestRunner wires a runner to a stub catalog and a fake clock so uploads finish instantly.
func newTestRunner(t *testing.T, cat *tu.StubCatalog) (*Runner, *bytes.Buffer) {
	t.Helper()
	t.Setenv("DISCOGS_USERNAME", "")
	t.Setenv("DISCOGS_TOKEN", "")

	logger := log.New(io.Discard)
	output := &bytes.Buffer{}
	engine := tasks.NewUploadEngine(cat,
		tasks.WithClock(tu.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		tasks.WithLogger(logger),
	)
	runner := NewRunner(RunnerOpts{
		Catalog: cat,
		Engine:  engine,
		Logger:  logger,
		Output:  output,
		Getenv:  noEnv,
	})
	return runner, output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	argv := append([]string{"yday", "--config", filepath.Join(t.TempDir(), "missing.toml")}, args...)
	return newApp(r).Run(context.Background(), argv)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			cat := tu.NewStubCatalog()
			engine := tasks.NewUploadEngine(cat)

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Catalog: cat,
				Engine:  engine,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != cat {
				t.Error("expected catalog to be set")
			}
			if runner.engine != engine {
				t.Error("expected engine to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Input: nil})

			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})

		t.Run("init builds the Discogs client and engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			runner.init()

			if runner.catalog == nil || runner.engine == nil {
				t.Fatal("expected catalog and engine to be built")
			}
			if !runner.ownsEngine {
				t.Error("expected runner to own the engine it built")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"serve", "upload", "plan", "folders", "setup"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("command %d: expected %q, got %q", i, want[i], cmd.Name)
			}
		}
	})
}

func TestConfigure(t *testing.T) {
	t.Run("loads the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		conf := "[discogs]\nfolder = \"Wantlist\"\n"
		if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
			t.Fatal(err)
		}

		cat := tu.NewStubCatalog(models.Folder{ID: 9, Name: "Wantlist"})
		runner, output := newTestRunner(t, cat)

		err := newApp(runner).Run(context.Background(), []string{"yday", "--config", path, "plan", "-u", "digger", "-t", "secret", "1"})
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if runner.config.Discogs.Folder != "Wantlist" {
			t.Errorf("expected folder from file, got %q", runner.config.Discogs.Folder)
		}
		if !strings.Contains(output.String(), "Folder: Wantlist (ID 9") {
			t.Errorf("expected plan against configured folder, got:\n%s", output.String())
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewStubCatalog())
		runner.getenv = func(k string) string {
			return map[string]string{"PORT": "8080", "LOG_LEVEL": "warn"}[k]
		}

		if err := run(t, runner, "setup", "--output", filepath.Join(t.TempDir(), "c.toml")); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if runner.config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", runner.config.Server.Port)
		}
		if runner.logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", runner.logger.GetLevel())
		}
	})

	t.Run("verbose enables debug logging", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewStubCatalog())

		if err := run(t, runner, "--verbose", "setup", "--output", filepath.Join(t.TempDir(), "c.toml")); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if runner.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
		}
	})

	t.Run("invalid environment", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewStubCatalog())
		runner.getenv = func(k string) string {
			if k == "PORT" {
				return "http"
			}
			return ""
		}

		err := run(t, runner, "folders", "-u", "digger", "-t", "secret")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestUpload(t *testing.T) {
	t.Run("prints outcomes in request order", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		cat.Seed(1, "1")
		runner, output := newTestRunner(t, cat)

		if err := run(t, runner, "upload", "-u", "digger", "-t", "secret", "1", "2"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}

		out := output.String()
		for _, want := range []string{"Upload Complete!", "Already exists in collection", "Added successfully", "1 added, 1 already in collection, 0 failed"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
		if strings.Index(out, "Already exists in collection") > strings.Index(out, "Added successfully") {
			t.Error("expected outcomes in request order")
		}
		if strings.Contains(out, "secret") {
			t.Error("token must not be printed")
		}
		if adds := cat.CallsTo("AddItem"); len(adds) != 1 || adds[0].ItemID != "2" {
			t.Errorf("expected a single add of 2, got %+v", adds)
		}
	})

	t.Run("creates the folder named by --folder", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		runner, output := newTestRunner(t, cat)

		if err := run(t, runner, "upload", "-u", "digger", "-t", "secret", "--folder", "Jazz", "--ids", "7,8"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if n := len(cat.CallsTo("CreateFolder")); n != 1 {
			t.Errorf("expected one folder creation, got %d", n)
		}
		if !strings.Contains(output.String(), "Folder: Jazz") || !strings.Contains(output.String(), "[created]") {
			t.Errorf("expected created folder in output:\n%s", output.String())
		}
	})

	t.Run("writes a report", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		runner, _ := newTestRunner(t, cat)
		path := filepath.Join(t.TempDir(), "reports", "upload.csv")

		if err := run(t, runner, "upload", "-u", "digger", "-t", "secret", "-o", path, "5"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Release ID,Status,Message,Title,Error") {
			t.Errorf("expected CSV header, got %q", content)
		}
		if !strings.Contains(content, "5,Added") {
			t.Errorf("expected row for release 5, got %q", content)
		}
	})

	t.Run("rejects an unknown report format", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		runner, _ := newTestRunner(t, cat)
		path := filepath.Join(t.TempDir(), "out.json")

		err := run(t, runner, "upload", "-u", "digger", "-t", "secret", "-o", path, "--format", "xml", "5")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("json output", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		runner, output := newTestRunner(t, cat)

		if err := run(t, runner, "upload", "-u", "digger", "-t", "secret", "--json", "5"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}

		out := output.String()
		if !strings.HasPrefix(out, "{") {
			t.Errorf("expected only JSON on output, got:\n%s", out)
		}
		if !strings.Contains(out, `"releaseId": "5"`) || !strings.Contains(out, `"status": "Added"`) {
			t.Errorf("unexpected JSON:\n%s", out)
		}
	})

	t.Run("failed adds are reported, not returned", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		cat.AddErr["2"] = errors.New("Release not found.")
		runner, output := newTestRunner(t, cat)

		if err := run(t, runner, "upload", "-u", "digger", "-t", "secret", "1", "2", "3"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if !strings.Contains(output.String(), "2 added, 0 already in collection, 1 failed") {
			t.Errorf("expected failure in summary:\n%s", output.String())
		}
	})

	t.Run("remote failure is returned", func(t *testing.T) {
		cat := tu.NewStubCatalog()
		cat.ListFoldersErr = errors.New("connection refused")
		runner, _ := newTestRunner(t, cat)

		err := run(t, runner, "upload", "-u", "digger", "-t", "secret", "1")
		if !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		cat := tu.NewStubCatalog()
		runner, _ := newTestRunner(t, cat)

		err := run(t, runner, "upload", "-u", "digger", "1")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if len(cat.Calls()) != 0 {
			t.Error("expected no catalog calls")
		}
	})

	t.Run("credentials from the environment", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		runner, _ := newTestRunner(t, cat)
		t.Setenv("DISCOGS_USERNAME", "digger")
		t.Setenv("DISCOGS_TOKEN", "secret")

		if err := run(t, runner, "upload", "1"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if !cat.Contains(1, "1") {
			t.Error("expected release 1 to be added")
		}
	})

	t.Run("missing release ids", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewStubCatalog())

		err := run(t, runner, "upload", "-u", "digger", "-t", "secret")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestPlan(t *testing.T) {
	t.Run("missing folder is not created", func(t *testing.T) {
		cat := tu.NewStubCatalog()
		runner, output := newTestRunner(t, cat)

		if err := run(t, runner, "plan", "-u", "digger", "-t", "secret", "1", "2"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if n := len(cat.CallsTo("CreateFolder")); n != 0 {
			t.Errorf("expected no folder creation, got %d", n)
		}
		if n := len(cat.CallsTo("AddItem")); n != 0 {
			t.Errorf("expected no adds, got %d", n)
		}

		out := output.String()
		if !strings.Contains(out, "will be created") || !strings.Contains(out, "2 to add, 0 already in collection") {
			t.Errorf("unexpected plan output:\n%s", out)
		}
		if !strings.Contains(out, "at least 2s") {
			t.Errorf("expected duration estimate:\n%s", out)
		}
	})

	t.Run("existing releases are skipped", func(t *testing.T) {
		cat := tu.NewStubCatalog(models.Folder{ID: 1, Name: "Uncategorized"})
		cat.Seed(1, "1", "2")
		runner, output := newTestRunner(t, cat)

		if err := run(t, runner, "plan", "-u", "digger", "-t", "secret", "1", "2"); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "0 to add, 2 already in collection") {
			t.Errorf("unexpected plan output:\n%s", out)
		}
		if strings.Contains(out, "Adding takes") {
			t.Error("expected no duration estimate when nothing is added")
		}
	})
}

func TestFolders(t *testing.T) {
	cat := tu.NewStubCatalog(
		models.Folder{ID: 0, Name: "All", Count: 3},
		models.Folder{ID: 1, Name: "Uncategorized", Count: 3},
	)
	runner, output := newTestRunner(t, cat)

	if err := run(t, runner, "folders", "-u", "digger", "-t", "secret"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for _, want := range []string{"All", "Uncategorized"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, output.String())
		}
	}
}

func TestSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")
	runner, output := newTestRunner(t, tu.NewStubCatalog())

	if err := run(t, runner, "setup", "--output", path); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	tu.AssertFileExists(t, path)
	if !strings.Contains(output.String(), "Configuration written") {
		t.Errorf("unexpected output:\n%s", output.String())
	}

	cfg, err := shared.LoadConfig(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("written config is invalid: %v", err)
	}

	if err := run(t, runner, "setup", "--output", path); err == nil {
		t.Error("expected error when the config already exists")
	}
}
