package azuredevops

import (
	"context"
	"fmt"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// GetPullRequestIterationChanges renders the latest iteration of the pull
// request as a unified diff. The service exposes per-file change entries and
// blob ids rather than patch text, so the diff is synthesized here: whole
// files for adds and deletes, a line diff for edits. Each file carries a
// single full-context hunk, which keeps line numbers exact.
func (c *Client) GetPullRequestIterationChanges(ctx context.Context, project, repo string, number int) (string, error) {
	iterations, err := c.gitClient.GetPullRequestIterations(ctx, git.GetPullRequestIterationsArgs{
		RepositoryId:  &repo,
		PullRequestId: &number,
		Project:       &project,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get iterations: %w", err)
	}
	if iterations == nil || len(*iterations) == 0 {
		return "", fmt.Errorf("no iterations found for pull request %d", number)
	}
	latest := (*iterations)[len(*iterations)-1]

	changes, err := c.gitClient.GetPullRequestIterationChanges(ctx, git.GetPullRequestIterationChangesArgs{
		RepositoryId:  &repo,
		PullRequestId: &number,
		IterationId:   latest.Id,
		Project:       &project,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get iteration changes: %w", err)
	}
	if changes == nil || changes.ChangeEntries == nil || len(*changes.ChangeEntries) == 0 {
		return "", fmt.Errorf("no changes found for pull request %d", number)
	}

	var out strings.Builder
	for _, change := range *changes.ChangeEntries {
		if change.ChangeType == nil || change.Item == nil {
			continue
		}
		item, ok := change.Item.(map[string]interface{})
		if !ok {
			continue
		}
		if itemBool(item, "isFolder") {
			continue
		}

		rendered, err := c.renderChange(ctx, project, repo, *change.ChangeType, item)
		if err != nil {
			return "", err
		}
		out.WriteString(rendered)
	}
	return out.String(), nil
}

func (c *Client) renderChange(ctx context.Context, project, repo string, changeType git.VersionControlChangeType, item map[string]interface{}) (string, error) {
	path := strings.TrimPrefix(itemString(item, "path"), "/")
	originalPath := strings.TrimPrefix(itemString(item, "originalPath"), "/")
	if originalPath == "" {
		originalPath = path
	}

	switch changeType {
	case git.VersionControlChangeTypeValues.Add:
		content, err := c.fetchBlob(ctx, project, repo, itemString(item, "objectId"))
		if err != nil {
			return "", err
		}
		return renderAddedFile(path, content), nil

	case git.VersionControlChangeTypeValues.Delete:
		content, err := c.fetchBlob(ctx, project, repo, itemString(item, "originalObjectId"))
		if err != nil {
			return "", err
		}
		return renderDeletedFile(originalPath, content), nil

	case git.VersionControlChangeTypeValues.Edit:
		oldContent, err := c.fetchBlob(ctx, project, repo, itemString(item, "originalObjectId"))
		if err != nil {
			return "", err
		}
		newContent, err := c.fetchBlob(ctx, project, repo, itemString(item, "objectId"))
		if err != nil {
			return "", err
		}
		return renderEditedFile(originalPath, path, oldContent, newContent, false), nil

	case git.VersionControlChangeTypeValues.Rename:
		oldContent, err := c.fetchBlob(ctx, project, repo, itemString(item, "originalObjectId"))
		if err != nil {
			return "", err
		}
		newContent, err := c.fetchBlob(ctx, project, repo, itemString(item, "objectId"))
		if err != nil {
			return "", err
		}
		return renderEditedFile(originalPath, path, oldContent, newContent, true), nil

	default:
		return "", nil
	}
}

func renderAddedFile(path, content string) string {
	lines := splitLines(content)

	var out strings.Builder
	fmt.Fprintf(&out, "diff --git a/%s b/%s\n", path, path)
	out.WriteString("--- /dev/null\n")
	fmt.Fprintf(&out, "+++ b/%s\n", path)
	if len(lines) > 0 {
		fmt.Fprintf(&out, "@@ -0,0 +1,%d @@\n", len(lines))
		for _, line := range lines {
			out.WriteString("+" + line + "\n")
		}
	}
	return out.String()
}

func renderDeletedFile(path, content string) string {
	lines := splitLines(content)

	var out strings.Builder
	fmt.Fprintf(&out, "diff --git a/%s b/%s\n", path, path)
	fmt.Fprintf(&out, "--- a/%s\n", path)
	out.WriteString("+++ /dev/null\n")
	if len(lines) > 0 {
		fmt.Fprintf(&out, "@@ -1,%d +0,0 @@\n", len(lines))
		for _, line := range lines {
			out.WriteString("-" + line + "\n")
		}
	}
	return out.String()
}

func renderEditedFile(oldPath, newPath, oldContent, newContent string, renamed bool) string {
	var out strings.Builder
	fmt.Fprintf(&out, "diff --git a/%s b/%s\n", oldPath, newPath)
	if renamed {
		fmt.Fprintf(&out, "rename from %s\n", oldPath)
		fmt.Fprintf(&out, "rename to %s\n", newPath)
	}
	if oldContent == newContent {
		return out.String()
	}

	fmt.Fprintf(&out, "--- a/%s\n", oldPath)
	fmt.Fprintf(&out, "+++ b/%s\n", newPath)

	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)
	fmt.Fprintf(&out, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))

	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(
		ensureTrailingNewline(oldContent),
		ensureTrailingNewline(newContent),
	)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lineArray)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			out.WriteString(prefix + line + "\n")
		}
	}
	return out.String()
}

// splitLines breaks content into lines without a trailing empty element for
// newline-terminated input.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
