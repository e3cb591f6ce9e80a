package azuredevops

import (
	"context"
	"fmt"
	"io"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/johanforsgren/forgereview/internal/async"
)

// Client wraps the Git resource area of one Azure DevOps organization.
// Methods are thin endpoint wrappers; error classification happens in the
// backend layer.
type Client struct {
	gitClient    GitClientInterface
	organization string
}

// NewClient dials the organization and builds the Git resource client. The
// connection is PAT-authenticated.
func NewClient(ctx context.Context, token, organization string) (*Client, error) {
	connection := azuredevops.NewPatConnection(organizationURL(organization), token)
	gitClient, err := git.NewClient(ctx, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to create git client: %w", err)
	}
	return &Client{
		gitClient:    gitClient,
		organization: organization,
	}, nil
}

func organizationURL(organization string) string {
	return fmt.Sprintf("https://dev.azure.com/%s", organization)
}

func (c *Client) GetPullRequest(ctx context.Context, project, repo string, number int) (*git.GitPullRequest, error) {
	pr, err := c.gitClient.GetPullRequest(ctx, git.GetPullRequestArgs{
		RepositoryId:  &repo,
		PullRequestId: &number,
		Project:       &project,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	return pr, nil
}

// ListPullRequestCommits walks the commit pages of the pull request, one
// continuation token at a time.
func (c *Client) ListPullRequestCommits(ctx context.Context, project, repo string, number int) ([]git.GitCommitRef, error) {
	return async.WalkPages(ctx, func(ctx context.Context, cursor string) (async.Page[git.GitCommitRef], error) {
		args := git.GetPullRequestCommitsArgs{
			RepositoryId:  &repo,
			PullRequestId: &number,
			Project:       &project,
		}
		if cursor != "" {
			args.ContinuationToken = &cursor
		}
		resp, err := c.gitClient.GetPullRequestCommits(ctx, args)
		if err != nil {
			return async.Page[git.GitCommitRef]{}, fmt.Errorf("failed to list pull request commits: %w", err)
		}
		if resp == nil {
			return async.Page[git.GitCommitRef]{}, nil
		}
		return async.Page[git.GitCommitRef]{
			Nodes:       resp.Value,
			HasNextPage: resp.ContinuationToken != "",
			EndCursor:   resp.ContinuationToken,
		}, nil
	})
}

func (c *Client) GetThreads(ctx context.Context, project, repo string, number int) ([]git.GitPullRequestCommentThread, error) {
	threads, err := c.gitClient.GetThreads(ctx, git.GetThreadsArgs{
		RepositoryId:  &repo,
		PullRequestId: &number,
		Project:       &project,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get threads: %w", err)
	}
	if threads == nil {
		return nil, nil
	}
	return *threads, nil
}

func (c *Client) CreateThread(ctx context.Context, project, repo string, number int, thread *git.GitPullRequestCommentThread) (*git.GitPullRequestCommentThread, error) {
	created, err := c.gitClient.CreateThread(ctx, git.CreateThreadArgs{
		CommentThread: thread,
		RepositoryId:  &repo,
		PullRequestId: &number,
		Project:       &project,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return created, nil
}

func (c *Client) CreateComment(ctx context.Context, project, repo string, number, threadID int, comment *git.Comment) (*git.Comment, error) {
	created, err := c.gitClient.CreateComment(ctx, git.CreateCommentArgs{
		Comment:       comment,
		RepositoryId:  &repo,
		PullRequestId: &number,
		ThreadId:      &threadID,
		Project:       &project,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return created, nil
}

// CreateReviewer upserts a reviewer on the pull request. A zero vote adds
// the reviewer without voting; a non-zero vote casts it.
func (c *Client) CreateReviewer(ctx context.Context, project, repo string, number int, reviewerID string, vote int) (*git.IdentityRefWithVote, error) {
	reviewer, err := c.gitClient.CreatePullRequestReviewer(ctx, git.CreatePullRequestReviewerArgs{
		Reviewer:      &git.IdentityRefWithVote{Vote: &vote},
		RepositoryId:  &repo,
		PullRequestId: &number,
		ReviewerId:    &reviewerID,
		Project:       &project,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reviewer: %w", err)
	}
	return reviewer, nil
}

func (c *Client) UpdatePullRequest(ctx context.Context, project, repo string, number int, update *git.GitPullRequest) (*git.GitPullRequest, error) {
	updated, err := c.gitClient.UpdatePullRequest(ctx, git.UpdatePullRequestArgs{
		GitPullRequestToUpdate: update,
		RepositoryId:           &repo,
		PullRequestId:          &number,
		Project:                &project,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update pull request: %w", err)
	}
	return updated, nil
}

func (c *Client) fetchBlob(ctx context.Context, project, repo, sha string) (string, error) {
	if sha == "" {
		return "", nil
	}
	rc, err := c.gitClient.GetBlobContent(ctx, git.GetBlobContentArgs{
		RepositoryId: &repo,
		Sha1:         &sha,
		Project:      &project,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get blob %s: %w", sha, err)
	}
	if rc == nil {
		return "", nil
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read blob %s: %w", sha, err)
	}
	return string(content), nil
}
