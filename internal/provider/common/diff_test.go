package common

import (
	"testing"

	"github.com/johanforsgren/forgereview/internal/domain"
)

func TestParseUnifiedDiff(t *testing.T) {
	tests := []struct {
		name     string
		diffText string
		want     *domain.Diff
	}{
		{
			name:     "empty diff",
			diffText: "",
			want:     &domain.Diff{Files: []domain.FileDiff{}},
		},
		{
			name: "simple diff with add",
			diffText: `diff --git a/file.txt b/file.txt
--- a/file.txt
+++ b/file.txt
@@ -1,3 +1,4 @@
 line 1
 line 2
+new line
 line 3`,
			want: &domain.Diff{
				Files: []domain.FileDiff{
					{
						OldPath: "file.txt",
						NewPath: "file.txt",
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -1,3 +1,4 @@",
								Lines: []domain.DiffLine{
									{Content: " line 1", Type: "context", OldLine: 1, NewLine: 1},
									{Content: " line 2", Type: "context", OldLine: 2, NewLine: 2},
									{Content: "+new line", Type: "add", NewLine: 3},
									{Content: " line 3", Type: "context", OldLine: 3, NewLine: 4},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "new file",
			diffText: `diff --git a/newfile.txt b/newfile.txt
new file mode 100644
--- /dev/null
+++ b/newfile.txt
@@ -0,0 +1,2 @@
+line 1
+line 2`,
			want: &domain.Diff{
				Files: []domain.FileDiff{
					{
						NewPath: "newfile.txt",
						IsNew:   true,
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -0,0 +1,2 @@",
								Lines: []domain.DiffLine{
									{Content: "+line 1", Type: "add", NewLine: 1},
									{Content: "+line 2", Type: "add", NewLine: 2},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "deleted file",
			diffText: `diff --git a/oldfile.txt b/oldfile.txt
deleted file mode 100644
--- a/oldfile.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-line 1
-line 2`,
			want: &domain.Diff{
				Files: []domain.FileDiff{
					{
						OldPath:   "oldfile.txt",
						IsDeleted: true,
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -1,2 +0,0 @@",
								Lines: []domain.DiffLine{
									{Content: "-line 1", Type: "delete", OldLine: 1},
									{Content: "-line 2", Type: "delete", OldLine: 2},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "renamed file",
			diffText: `diff --git a/old/name.go b/new/name.go
similarity index 96%
rename from old/name.go
rename to new/name.go
--- a/old/name.go
+++ b/new/name.go
@@ -1,1 +1,1 @@
-package old
+package new`,
			want: &domain.Diff{
				Files: []domain.FileDiff{
					{
						OldPath:   "old/name.go",
						NewPath:   "new/name.go",
						IsRenamed: true,
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -1,1 +1,1 @@",
								Lines: []domain.DiffLine{
									{Content: "-package old", Type: "delete", OldLine: 1},
									{Content: "+package new", Type: "add", NewLine: 1},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "github format with index line",
			diffText: "diff --git a/README.md b/README.md\n" +
				"index 1234567..89abcdef 100644\n" +
				"--- a/README.md\n" +
				"+++ b/README.md\n" +
				"@@ -1,5 +1,6 @@\n" +
				" # forgereview\n" +
				" \n" +
				" A forge review client\n" +
				"+Now with reply batching!\n" +
				" \n" +
				" ## Installation",
			want: &domain.Diff{
				Files: []domain.FileDiff{
					{
						OldPath: "README.md",
						NewPath: "README.md",
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -1,5 +1,6 @@",
								Lines: []domain.DiffLine{
									{Content: " # forgereview", Type: "context", OldLine: 1, NewLine: 1},
									{Content: " ", Type: "context", OldLine: 2, NewLine: 2},
									{Content: " A forge review client", Type: "context", OldLine: 3, NewLine: 3},
									{Content: "+Now with reply batching!", Type: "add", NewLine: 4},
									{Content: " ", Type: "context", OldLine: 4, NewLine: 5},
									{Content: " ## Installation", Type: "context", OldLine: 5, NewLine: 6},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "no newline marker is skipped",
			diffText: `diff --git a/file.txt b/file.txt
--- a/file.txt
+++ b/file.txt
@@ -1,1 +1,1 @@
-old
+new
\ No newline at end of file`,
			want: &domain.Diff{
				Files: []domain.FileDiff{
					{
						OldPath: "file.txt",
						NewPath: "file.txt",
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -1,1 +1,1 @@",
								Lines: []domain.DiffLine{
									{Content: "-old", Type: "delete", OldLine: 1},
									{Content: "+new", Type: "add", NewLine: 1},
								},
							},
						},
					},
				},
			},
		},
		{
			name: "multiple files",
			diffText: `diff --git a/file1.txt b/file1.txt
--- a/file1.txt
+++ b/file1.txt
@@ -1,1 +1,2 @@
 line 1
+added line
diff --git a/file2.txt b/file2.txt
--- a/file2.txt
+++ b/file2.txt
@@ -1,2 +1,1 @@
 line 1
-removed line`,
			want: &domain.Diff{
				Files: []domain.FileDiff{
					{
						OldPath: "file1.txt",
						NewPath: "file1.txt",
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -1,1 +1,2 @@",
								Lines: []domain.DiffLine{
									{Content: " line 1", Type: "context", OldLine: 1, NewLine: 1},
									{Content: "+added line", Type: "add", NewLine: 2},
								},
							},
						},
					},
					{
						OldPath: "file2.txt",
						NewPath: "file2.txt",
						Hunks: []domain.DiffHunk{
							{
								Header: "@@ -1,2 +1,1 @@",
								Lines: []domain.DiffLine{
									{Content: " line 1", Type: "context", OldLine: 1, NewLine: 1},
									{Content: "-removed line", Type: "delete", OldLine: 2},
								},
							},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUnifiedDiff(tt.diffText)
			if len(got.Files) != len(tt.want.Files) {
				t.Fatalf("ParseUnifiedDiff() files count = %v, want %v", len(got.Files), len(tt.want.Files))
			}
			for i := range got.Files {
				gotFile := got.Files[i]
				wantFile := tt.want.Files[i]

				if gotFile.OldPath != wantFile.OldPath {
					t.Errorf("File %d OldPath = %v, want %v", i, gotFile.OldPath, wantFile.OldPath)
				}
				if gotFile.NewPath != wantFile.NewPath {
					t.Errorf("File %d NewPath = %v, want %v", i, gotFile.NewPath, wantFile.NewPath)
				}
				if gotFile.IsNew != wantFile.IsNew {
					t.Errorf("File %d IsNew = %v, want %v", i, gotFile.IsNew, wantFile.IsNew)
				}
				if gotFile.IsDeleted != wantFile.IsDeleted {
					t.Errorf("File %d IsDeleted = %v, want %v", i, gotFile.IsDeleted, wantFile.IsDeleted)
				}
				if gotFile.IsRenamed != wantFile.IsRenamed {
					t.Errorf("File %d IsRenamed = %v, want %v", i, gotFile.IsRenamed, wantFile.IsRenamed)
				}
				if len(gotFile.Hunks) != len(wantFile.Hunks) {
					t.Errorf("File %d hunks count = %v, want %v", i, len(gotFile.Hunks), len(wantFile.Hunks))
					continue
				}
				for j := range gotFile.Hunks {
					gotHunk := gotFile.Hunks[j]
					wantHunk := wantFile.Hunks[j]

					if gotHunk.Header != wantHunk.Header {
						t.Errorf("File %d Hunk %d Header = %v, want %v", i, j, gotHunk.Header, wantHunk.Header)
					}
					if len(gotHunk.Lines) != len(wantHunk.Lines) {
						t.Errorf("File %d Hunk %d lines count = %v, want %v", i, j, len(gotHunk.Lines), len(wantHunk.Lines))
						continue
					}
					for k := range gotHunk.Lines {
						gotLine := gotHunk.Lines[k]
						wantLine := wantHunk.Lines[k]

						if gotLine != wantLine {
							t.Errorf("File %d Hunk %d Line %d = %+v, want %+v", i, j, k, gotLine, wantLine)
						}
					}
				}
			}
		})
	}
}
