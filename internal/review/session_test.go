package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/johanforsgren/forgereview/internal/domain"
)

type stubProvider struct {
	fetchDiff    func(ctx context.Context) (string, error)
	fetchDetails func(ctx context.Context) (*domain.PullRequest, error)
}

func (p *stubProvider) GetType() domain.ProviderType {
	return domain.ProviderGitHub
}

func (p *stubProvider) Identity() domain.PRIdentity {
	return domain.PRIdentity{Owner: "octo", Repo: "demo", Number: 7}
}

func (p *stubProvider) FetchDiff(ctx context.Context) (string, error) {
	return p.fetchDiff(ctx)
}

func (p *stubProvider) FetchCommitDiff(ctx context.Context, sha string) (string, error) {
	return "", nil
}

func (p *stubProvider) FetchDetails(ctx context.Context) (*domain.PullRequest, error) {
	return p.fetchDetails(ctx)
}

func (p *stubProvider) ListLabels(ctx context.Context) ([]domain.Label, error) {
	return nil, nil
}

func (p *stubProvider) ListAssignees(ctx context.Context) ([]domain.User, error) {
	return nil, nil
}

func (p *stubProvider) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	return nil, nil
}

func (p *stubProvider) ListAssignableUsers(ctx context.Context) ([]domain.User, error) {
	return nil, nil
}

func (p *stubProvider) SetLabels(ctx context.Context, labels []string) error {
	return nil
}

func (p *stubProvider) SetAssignees(ctx context.Context, logins []string) error {
	return nil
}

func (p *stubProvider) SetMilestone(ctx context.Context, number int) error {
	return nil
}

func (p *stubProvider) SetTitle(ctx context.Context, title string) error {
	return nil
}

func (p *stubProvider) SetDescription(ctx context.Context, body string) error {
	return nil
}

func (p *stubProvider) Merge(ctx context.Context, strategy domain.MergeStrategy) error {
	return nil
}

func (p *stubProvider) AddReaction(ctx context.Context, target domain.ReactionTarget, subjectID int64, content string) error {
	return nil
}

func (p *stubProvider) RemoveReaction(ctx context.Context, target domain.ReactionTarget, subjectID, reactionID int64) error {
	return nil
}

func (p *stubProvider) SendReplies(ctx context.Context, batch domain.ReplyBatch) error {
	return nil
}

func (p *stubProvider) SendReview(ctx context.Context, submission domain.ReviewSubmission) error {
	return nil
}

func (p *stubProvider) RequestReview(ctx context.Context, userIDs []string) error {
	return nil
}

func (p *stubProvider) NewIssue(ctx context.Context, title, body string) (*domain.Issue, error) {
	return nil, nil
}

func (p *stubProvider) NewIssueComment(ctx context.Context, body string) error {
	return nil
}

func (p *stubProvider) FileURL(sha, path string, blob bool) string {
	return ""
}

const loadDiff = `diff --git a/cmd/main.go b/cmd/main.go
--- a/cmd/main.go
+++ b/cmd/main.go
@@ -1,3 +1,3 @@
 package main
-const retries = 2
+const retries = 3
`

func TestLoad_AssemblesSnapshot(t *testing.T) {
	provider := &stubProvider{
		fetchDiff: func(ctx context.Context) (string, error) {
			return loadDiff, nil
		},
		fetchDetails: func(ctx context.Context) (*domain.PullRequest, error) {
			return &domain.PullRequest{Title: "Bump retries"}, nil
		},
	}

	snapshot, err := NewSession(provider).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if snapshot.Details == nil || snapshot.Details.Title != "Bump retries" {
		t.Errorf("Details = %+v, want fetched metadata", snapshot.Details)
	}
	if snapshot.DiffText != loadDiff {
		t.Errorf("DiffText = %q, want raw diff", snapshot.DiffText)
	}
	if len(snapshot.Diff.Files) != 1 {
		t.Fatalf("Diff.Files = %d, want 1", len(snapshot.Diff.Files))
	}
	file := snapshot.Diff.Files[0]
	if file.NewPath != "cmd/main.go" {
		t.Errorf("NewPath = %q, want cmd/main.go", file.NewPath)
	}
	if len(file.Hunks) != 1 || len(file.Hunks[0].Lines) != 3 {
		t.Errorf("Hunks = %+v, want one hunk with three lines", file.Hunks)
	}
}

func TestLoad_FetchesConcurrently(t *testing.T) {
	detailsStarted := make(chan struct{})
	provider := &stubProvider{
		fetchDiff: func(ctx context.Context) (string, error) {
			select {
			case <-detailsStarted:
			case <-time.After(2 * time.Second):
				return "", errors.New("details fetch never started")
			}
			return loadDiff, nil
		},
		fetchDetails: func(ctx context.Context) (*domain.PullRequest, error) {
			close(detailsStarted)
			return &domain.PullRequest{}, nil
		},
	}

	if _, err := NewSession(provider).Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v, want concurrent fetches", err)
	}
}

func TestLoad_FailsWhenDiffFails(t *testing.T) {
	provider := &stubProvider{
		fetchDiff: func(ctx context.Context) (string, error) {
			return "", &domain.NotFoundError{}
		},
		fetchDetails: func(ctx context.Context) (*domain.PullRequest, error) {
			return &domain.PullRequest{}, nil
		},
	}

	snapshot, err := NewSession(provider).Load(context.Background())
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Load() error = %v, want NotFoundError", err)
	}
	if snapshot != nil {
		t.Errorf("Load() = %+v, want nil snapshot on failure", snapshot)
	}
}

func TestLoad_FailsWhenDetailsFails(t *testing.T) {
	provider := &stubProvider{
		fetchDiff: func(ctx context.Context) (string, error) {
			return loadDiff, nil
		},
		fetchDetails: func(ctx context.Context) (*domain.PullRequest, error) {
			return nil, &domain.AuthError{}
		},
	}

	_, err := NewSession(provider).Load(context.Background())
	var auth *domain.AuthError
	if !errors.As(err, &auth) {
		t.Errorf("Load() error = %v, want AuthError", err)
	}
}
