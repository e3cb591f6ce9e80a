// Package review drives per-session orchestration on top of a provider. The
// initial load is the hot path: diff and metadata are fetched concurrently
// and handed back as one snapshot.
package review

import (
	"context"

	"github.com/johanforsgren/forgereview/internal/async"
	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/provider/common"
)

// Snapshot is the result of one load: the metadata graph, the raw unified
// diff text, and its parsed form.
type Snapshot struct {
	Details  *domain.PullRequest
	DiffText string
	Diff     *domain.Diff
}

// Session owns the review workflow for one pull request.
type Session struct {
	provider domain.Provider
}

func NewSession(provider domain.Provider) *Session {
	return &Session{provider: provider}
}

// Provider exposes the backend for capability calls that need no
// orchestration.
func (s *Session) Provider() domain.Provider {
	return s.provider
}

// Load fetches the diff and the metadata graph concurrently, parses the diff
// once its text arrives, and assembles the snapshot. Either fetch failing
// fails the load; the other fetch is not cancelled.
func (s *Session) Load(ctx context.Context) (*Snapshot, error) {
	diffFuture := async.Go(func() (string, error) {
		return s.provider.FetchDiff(ctx)
	})
	parsedFuture := async.Then(diffFuture, func(text string) (*domain.Diff, error) {
		return common.ParseUnifiedDiff(text), nil
	})
	detailsFuture := async.Go(func() (*domain.PullRequest, error) {
		return s.provider.FetchDetails(ctx)
	})

	details, err := detailsFuture.Await(ctx)
	if err != nil {
		return nil, err
	}
	diffText, err := diffFuture.Await(ctx)
	if err != nil {
		return nil, err
	}
	parsed, err := parsedFuture.Await(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Details:  details,
		DiffText: diffText,
		Diff:     parsed,
	}, nil
}
