package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/desertthunder/yday/internal/models"
	"github.com/desertthunder/yday/internal/shared"
	"github.com/urfave/cli/v3"
)

// splitIDs splits on commas and whitespace, dropping empty fields.
func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parseIDs reads release ids from r. Text after '#' is a comment.
func parseIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		ids = append(ids, splitIDs(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read release ids: %w", err)
	}
	return ids, nil
}

// releaseIDs collects ids from positional args, then --ids, then --file, keeping order and duplicates.
func (r *Runner) releaseIDs(cmd *cli.Command) ([]string, error) {
	var ids []string
	for _, arg := range cmd.Args().Slice() {
		ids = append(ids, splitIDs(arg)...)
	}
	ids = append(ids, splitIDs(cmd.String("ids"))...)

	if path := cmd.String("file"); path != "" {
		var src io.Reader = r.input
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open id file: %w", err)
			}
			defer f.Close()
			src = f
		}
		fromFile, err := parseIDs(src)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fromFile...)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no release ids given (use arguments, --ids or --file)", shared.ErrMissingArgument)
	}
	return ids, nil
}

func accountFrom(cmd *cli.Command) (models.Account, error) {
	account := models.Account{
		Username: strings.TrimSpace(cmd.String("username")),
		Token:    strings.TrimSpace(cmd.String("token")),
	}
	if account.Username == "" || account.Token == "" {
		return account, fmt.Errorf("%w: --username and --token (or DISCOGS_USERNAME and DISCOGS_TOKEN) are required", shared.ErrMissingCredentials)
	}
	return account, nil
}

// uploadRequest builds the request shared by upload and plan.
func (r *Runner) uploadRequest(cmd *cli.Command) (models.UploadRequest, error) {
	account, err := accountFrom(cmd)
	if err != nil {
		return models.UploadRequest{}, err
	}
	ids, err := r.releaseIDs(cmd)
	if err != nil {
		return models.UploadRequest{}, err
	}

	folder := strings.TrimSpace(cmd.String("folder"))
	if folder == "" {
		folder = r.config.Discogs.Folder
	}

	req := models.UploadRequest{Account: account, FolderName: folder, ItemIDs: ids}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
