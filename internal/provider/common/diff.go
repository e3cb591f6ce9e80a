package common

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/johanforsgren/forgereview/internal/domain"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ParseUnifiedDiff turns the raw unified diff text a forge serves into the
// structured per-file, per-hunk form the rest of the system works with.
// Unrecognized metadata lines (index, mode changes) are skipped.
func ParseUnifiedDiff(diffText string) *domain.Diff {
	lines := strings.Split(diffText, "\n")
	files := []domain.FileDiff{}
	var file *domain.FileDiff
	var hunk *domain.DiffHunk
	oldLine, newLine := 0, 0

	flushHunk := func() {
		if file != nil && hunk != nil {
			file.Hunks = append(file.Hunks, *hunk)
		}
		hunk = nil
	}
	flushFile := func() {
		flushHunk()
		if file != nil {
			files = append(files, *file)
		}
		file = nil
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flushFile()
			file = &domain.FileDiff{Hunks: []domain.DiffHunk{}}

		case strings.HasPrefix(line, "@@"):
			flushHunk()
			hunk = &domain.DiffHunk{
				Header: line,
				Lines:  []domain.DiffLine{},
			}
			if matches := hunkHeaderRegex.FindStringSubmatch(line); len(matches) >= 3 {
				oldLine, _ = strconv.Atoi(matches[1])
				newLine, _ = strconv.Atoi(matches[2])
			}

		case hunk != nil:
			diffLine := domain.DiffLine{Content: line}
			switch {
			case strings.HasPrefix(line, "+"):
				diffLine.Type = "add"
				diffLine.NewLine = newLine
				newLine++
			case strings.HasPrefix(line, "-"):
				diffLine.Type = "delete"
				diffLine.OldLine = oldLine
				oldLine++
			case strings.HasPrefix(line, `\`) || line == "":
				// "\ No newline at end of file" and split artifacts carry
				// no position.
				continue
			default:
				diffLine.Type = "context"
				diffLine.OldLine = oldLine
				diffLine.NewLine = newLine
				oldLine++
				newLine++
			}
			hunk.Lines = append(hunk.Lines, diffLine)

		case file == nil:
			continue

		case strings.HasPrefix(line, "rename from "):
			file.IsRenamed = true
			file.OldPath = strings.TrimPrefix(line, "rename from ")

		case strings.HasPrefix(line, "rename to "):
			file.IsRenamed = true
			file.NewPath = strings.TrimPrefix(line, "rename to ")

		case strings.HasPrefix(line, "--- "):
			path := strings.TrimPrefix(line, "--- ")
			if path == "/dev/null" {
				file.IsNew = true
			} else {
				file.OldPath = strings.TrimPrefix(path, "a/")
			}

		case strings.HasPrefix(line, "+++ "):
			path := strings.TrimPrefix(line, "+++ ")
			if path == "/dev/null" {
				file.IsDeleted = true
			} else {
				file.NewPath = strings.TrimPrefix(path, "b/")
			}
		}
	}

	flushFile()

	return &domain.Diff{Files: files}
}
