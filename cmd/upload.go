package main

import (
	"context"
	"time"

	"github.com/desertthunder/yday/internal/formatter"
	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload adds the requested releases to a collection folder and prints one line per release.
//
// On interrupt the releases handled so far are still printed and reported.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	req, err := r.uploadRequest(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("tui") {
		return r.UploadTUI(ctx, cmd, req)
	}

	asJSON := cmd.Bool("json")
	if !asJSON {
		r.writePlain("Uploading %d releases to '%s' for %s\n\n", len(req.ItemIDs), req.FolderName, req.Account)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if !asJSON {
				r.printProgress(update)
			}
		}
	}()

	result, err := r.engine.Run(ctx, req, progressCh)
	close(progressCh)
	<-done

	if result != nil {
		if werr := r.finish(cmd, result, err); werr != nil {
			return werr
		}
	}
	return err
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.ResolveFolder, tasks.CreateFolder:
		r.writePlain("📁 %s\n", update.Message)
	case tasks.EnumeratePage:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.PlanItems:
		r.writePlain("\n📝 %s\n\n", update.Message)
	case tasks.ApplyItem:
		r.writePlain("   %s\n", update.Message)
	}
}

// finish prints the result and writes the report file if one was requested.
func (r *Runner) finish(cmd *cli.Command, result *tasks.Result, runErr error) error {
	if cmd.Bool("json") {
		report := formatter.Report{
			Folder:  result.Folder.Name,
			Summary: formatter.Summarize(result.Outcomes),
			Results: formatter.Records(result.Outcomes),
		}
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else {
		title := "Upload Complete!"
		if runErr != nil {
			title = "Upload Interrupted"
		}
		r.writePlain("\n")
		r.writePlainHeader(title)
		r.writePlain("Folder: %s (ID %d)", result.Folder.Name, result.Folder.ID)
		if result.FolderCreated {
			r.writePlain(" [created]")
		}
		r.writePlain("\nRun: %s\n\n", result.RunID)
		r.writePlain("%s\n", formatter.OutcomeTable(result.Outcomes))
	}

	if path := cmd.String("output"); path != "" {
		format := cmd.String("format")
		if format == "" {
			format = formatter.FormatFromPath(path)
		}
		if err := formatter.WriteReport(path, format, result.Folder.Name, result.Outcomes); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path, "format", format)
	}
	return nil
}

// Plan resolves the folder without creating it and prints which releases would be added.
func (r *Runner) Plan(ctx context.Context, cmd *cli.Command) error {
	req, err := r.uploadRequest(cmd)
	if err != nil {
		return err
	}

	preview, err := r.engine.Preview(ctx, req, nil)
	if err != nil {
		return err
	}

	if preview.Folder == nil {
		r.writePlain("Folder: %s (will be created)\n\n", preview.FolderName)
	} else {
		r.writePlain("Folder: %s (ID %d, %d releases)\n\n", preview.Folder.Name, preview.Folder.ID, preview.Existing)
	}
	r.writePlain("%s\n", formatter.PlanTable(preview.Plan))

	adds := 0
	for _, e := range preview.Plan {
		if e.Action == models.Add {
			adds++
		}
	}
	if adds > 0 {
		r.writePlainln("Adding takes at least %s (one release per %s).", tasks.AddDelay*time.Duration(adds), tasks.AddDelay)
	}
	return nil
}

// Folders lists the account's collection folders.
func (r *Runner) Folders(ctx context.Context, cmd *cli.Command) error {
	account, err := accountFrom(cmd)
	if err != nil {
		return err
	}

	folders, err := r.catalog.ListFolders(ctx, account)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", formatter.FolderTable(folders))
	return nil
}
