package azuredevops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/johanforsgren/forgereview/internal/async"
	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/logger"
	"github.com/johanforsgren/forgereview/internal/provider/common"
)

// Capabilities without an Azure DevOps mapping yet. Callers can test for
// them with errors.Is and degrade gracefully.
var (
	ErrLabelsNotImplemented          = errors.New("label operations not yet implemented for Azure DevOps")
	ErrAssigneesNotImplemented       = errors.New("assignee operations not yet implemented for Azure DevOps")
	ErrMilestonesNotImplemented      = errors.New("milestone operations not yet implemented for Azure DevOps")
	ErrAssignableUsersNotImplemented = errors.New("assignable user listing not yet implemented for Azure DevOps")
	ErrReactionsNotImplemented       = errors.New("reactions not yet implemented for Azure DevOps")
	ErrIssuesNotImplemented          = errors.New("issue creation not yet implemented for Azure DevOps")
	ErrCommitDiffNotImplemented      = errors.New("commit diffs not yet implemented for Azure DevOps")
)

// ErrReviewerIdentityRequired reports that a vote was requested but the
// backend was built without the authenticated user's identity id.
var ErrReviewerIdentityRequired = errors.New("a reviewer identity id is required to vote on Azure DevOps")

// Backend implements domain.Provider for Azure DevOps. The identity's owner
// slot carries the project name; the organization selects the tenant.
type Backend struct {
	id         domain.PRIdentity
	client     *Client
	store      domain.MetadataStore
	reviewerID string

	mu          sync.Mutex
	sha         string
	title       string
	description string
	details     *domain.PullRequest
}

// NewBackend constructs the backend for one pull request. reviewerID is the
// authenticated user's identity id, needed to cast votes; it may be empty
// when the session never votes. Previously cached metadata is restored from
// the store; a failed restore is logged and ignored.
func NewBackend(ctx context.Context, id domain.PRIdentity, token, organization, reviewerID string, store domain.MetadataStore) (*Backend, error) {
	client, err := NewClient(ctx, token, organization)
	if err != nil {
		return nil, err
	}

	b := &Backend{
		id:         id,
		client:     client,
		store:      store,
		reviewerID: reviewerID,
	}

	if store != nil {
		cached, err := store.Load(id)
		switch {
		case err != nil:
			logger.LogError("AZUREDEVOPS_CACHE_LOAD", id.String(), err)
		case cached != nil:
			logger.Log("AzureDevOps: Restored cached metadata for %s", id)
			b.details = cached
			b.applyDetails(cached)
		}
	}

	return b, nil
}

func (b *Backend) GetType() domain.ProviderType {
	return domain.ProviderAzureDevOps
}

func (b *Backend) Identity() domain.PRIdentity {
	return b.id
}

func (b *Backend) FetchDiff(ctx context.Context) (string, error) {
	logger.Log("AzureDevOps: Synthesizing diff for %s", b.id)
	diff, err := b.client.GetPullRequestIterationChanges(ctx, b.id.Owner, b.id.Repo, b.id.Number)
	if err != nil {
		return "", common.Classify("AZUREDEVOPS_FETCH_DIFF", err)
	}
	logger.Log("AzureDevOps: Synthesized diff of %d bytes for %s", len(diff), b.id)
	return diff, nil
}

func (b *Backend) FetchCommitDiff(ctx context.Context, sha string) (string, error) {
	return "", ErrCommitDiffNotImplemented
}

// FetchDetails retrieves the pull request, its commit pages, and its
// discussion threads, refreshes the local field mirrors, and writes the
// graph through to the store.
func (b *Backend) FetchDetails(ctx context.Context) (*domain.PullRequest, error) {
	logger.Log("AzureDevOps: Fetching metadata for %s", b.id)
	raw, err := b.client.GetPullRequest(ctx, b.id.Owner, b.id.Repo, b.id.Number)
	if err != nil {
		return nil, common.Classify("AZUREDEVOPS_FETCH_DETAILS", err)
	}
	pr := convertPullRequest(raw)

	var commits []git.GitCommitRef
	var threads []git.GitPullRequestCommentThread
	err = async.JoinAll(
		func() error {
			var err error
			commits, err = b.client.ListPullRequestCommits(ctx, b.id.Owner, b.id.Repo, b.id.Number)
			return err
		},
		func() error {
			var err error
			threads, err = b.client.GetThreads(ctx, b.id.Owner, b.id.Repo, b.id.Number)
			return err
		},
	)
	if err != nil {
		return nil, common.Classify("AZUREDEVOPS_FETCH_DETAILS", err)
	}
	pr.Commits = convertCommits(commits)
	pr.Comments = convertThreads(threads)

	b.mu.Lock()
	b.details = pr
	b.applyDetails(pr)
	b.mu.Unlock()

	b.persist(pr)
	logger.Log("AzureDevOps: Retrieved metadata for %s: %q", b.id, pr.Title)
	return pr, nil
}

func (b *Backend) ListLabels(ctx context.Context) ([]domain.Label, error) {
	return nil, ErrLabelsNotImplemented
}

func (b *Backend) ListAssignees(ctx context.Context) ([]domain.User, error) {
	return nil, ErrAssigneesNotImplemented
}

func (b *Backend) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	return nil, ErrMilestonesNotImplemented
}

func (b *Backend) ListAssignableUsers(ctx context.Context) ([]domain.User, error) {
	return nil, ErrAssignableUsersNotImplemented
}

func (b *Backend) SetLabels(ctx context.Context, labels []string) error {
	return ErrLabelsNotImplemented
}

func (b *Backend) SetAssignees(ctx context.Context, logins []string) error {
	return ErrAssigneesNotImplemented
}

func (b *Backend) SetMilestone(ctx context.Context, number int) error {
	return ErrMilestonesNotImplemented
}

func (b *Backend) SetTitle(ctx context.Context, title string) error {
	logger.Log("AzureDevOps: Updating title of %s", b.id)
	update := &git.GitPullRequest{Title: &title}
	if _, err := b.client.UpdatePullRequest(ctx, b.id.Owner, b.id.Repo, b.id.Number, update); err != nil {
		return common.Classify("AZUREDEVOPS_SET_TITLE", err)
	}

	b.mu.Lock()
	b.title = title
	b.mu.Unlock()
	return nil
}

func (b *Backend) SetDescription(ctx context.Context, body string) error {
	logger.Log("AzureDevOps: Updating description of %s", b.id)
	update := &git.GitPullRequest{Description: &body}
	if _, err := b.client.UpdatePullRequest(ctx, b.id.Owner, b.id.Repo, b.id.Number, update); err != nil {
		return common.Classify("AZUREDEVOPS_SET_DESCRIPTION", err)
	}

	b.mu.Lock()
	b.description = body
	b.mu.Unlock()
	return nil
}

// Merge completes the pull request. Completion is asynchronous on the
// service side; acceptance of the update is treated as success.
func (b *Backend) Merge(ctx context.Context, strategy domain.MergeStrategy) error {
	logger.Log("AzureDevOps: Completing %s with strategy %q", b.id, strategy)

	current, err := b.client.GetPullRequest(ctx, b.id.Owner, b.id.Repo, b.id.Number)
	if err != nil {
		return common.Classify("AZUREDEVOPS_MERGE", err)
	}
	if current == nil || current.LastMergeSourceCommit == nil {
		notReady := &domain.UnknownError{Raw: "pull request has no merge source commit"}
		logger.LogError("AZUREDEVOPS_MERGE", b.id.String(), notReady)
		return notReady
	}

	completed := git.PullRequestStatusValues.Completed
	mergeStrategy := mapMergeStrategy(strategy)
	update := &git.GitPullRequest{
		Status:                &completed,
		LastMergeSourceCommit: current.LastMergeSourceCommit,
		CompletionOptions: &git.GitPullRequestCompletionOptions{
			MergeStrategy: &mergeStrategy,
		},
	}

	updated, err := b.client.UpdatePullRequest(ctx, b.id.Owner, b.id.Repo, b.id.Number, update)
	if err != nil {
		return common.Classify("AZUREDEVOPS_MERGE", err)
	}
	if updated != nil {
		logger.Log("AzureDevOps: Completion accepted for %s (merge %s)", b.id, common.GetUUIDString(updated.MergeId))
	}
	return nil
}

func (b *Backend) AddReaction(ctx context.Context, target domain.ReactionTarget, subjectID int64, content string) error {
	return ErrReactionsNotImplemented
}

func (b *Backend) RemoveReaction(ctx context.Context, target domain.ReactionTarget, subjectID, reactionID int64) error {
	return ErrReactionsNotImplemented
}

// SendReplies posts every reply in the batch concurrently and returns once
// all of them have resolved. Each reply lands under the root comment of the
// thread named by its id.
func (b *Backend) SendReplies(ctx context.Context, batch domain.ReplyBatch) error {
	logger.Log("AzureDevOps: Sending %d replies on %s", len(batch.Replies), b.id)

	ops := make([]func() error, 0, len(batch.Replies))
	for _, reply := range batch.Replies {
		ops = append(ops, func() error {
			return b.replyToThread(ctx, int(reply.ReplyToID), reply.Body)
		})
	}
	if err := async.JoinAll(ops...); err != nil {
		return common.Classify("AZUREDEVOPS_SEND_REPLIES", err)
	}
	logger.Log("AzureDevOps: Sent %d replies on %s", len(batch.Replies), b.id)
	return nil
}

// SendReview casts the vote first, then publishes the feedback and inline
// comments as threads in one joined batch.
func (b *Backend) SendReview(ctx context.Context, submission domain.ReviewSubmission) error {
	logger.Log("AzureDevOps: Submitting %s review on %s with %d comments", submission.State, b.id, len(submission.Comments))

	voted := false
	if vote := mapVote(submission.State); vote != 0 {
		if b.reviewerID == "" {
			return ErrReviewerIdentityRequired
		}
		if _, err := b.client.CreateReviewer(ctx, b.id.Owner, b.id.Repo, b.id.Number, b.reviewerID, vote); err != nil {
			return common.Classify("AZUREDEVOPS_SEND_REVIEW", err)
		}
		voted = true
	}

	ops := make([]func() error, 0, len(submission.Comments)+1)
	if submission.Feedback != "" {
		ops = append(ops, func() error {
			return b.createThread(ctx, submission.Feedback, nil)
		})
	}
	for _, comment := range submission.Comments {
		ops = append(ops, func() error {
			return b.createThread(ctx, comment.Body, inlineContext(comment))
		})
	}
	if err := async.JoinAll(ops...); err != nil {
		classified := common.Classify("AZUREDEVOPS_SEND_REVIEW", err)
		if voted {
			// The vote is already on the pull request and is not rolled back.
			return fmt.Errorf("%w: %w", common.ErrPartialReviewSubmission, classified)
		}
		return classified
	}
	logger.Log("AzureDevOps: Review submitted on %s", b.id)
	return nil
}

// RequestReview adds every user as an unvoted reviewer, in one joined batch.
func (b *Backend) RequestReview(ctx context.Context, userIDs []string) error {
	logger.Log("AzureDevOps: Requesting review from %d users on %s", len(userIDs), b.id)

	ops := make([]func() error, 0, len(userIDs))
	for _, userID := range userIDs {
		ops = append(ops, func() error {
			_, err := b.client.CreateReviewer(ctx, b.id.Owner, b.id.Repo, b.id.Number, userID, 0)
			return err
		})
	}
	if err := async.JoinAll(ops...); err != nil {
		return common.Classify("AZUREDEVOPS_REQUEST_REVIEW", err)
	}
	return nil
}

func (b *Backend) NewIssue(ctx context.Context, title, body string) (*domain.Issue, error) {
	return nil, ErrIssuesNotImplemented
}

func (b *Backend) NewIssueComment(ctx context.Context, body string) error {
	logger.Log("AzureDevOps: Commenting on %s", b.id)
	if err := b.createThread(ctx, body, nil); err != nil {
		return common.Classify("AZUREDEVOPS_NEW_ISSUE_COMMENT", err)
	}
	return nil
}

// FileURL resolves the location of one file at a given commit: the browsable
// file view with blob set, otherwise the items API endpoint that serves the
// raw bytes.
func (b *Backend) FileURL(sha, path string, blob bool) string {
	organization := b.client.organization
	cleanPath := strings.TrimPrefix(path, "/")

	if blob {
		return fmt.Sprintf("https://dev.azure.com/%s/%s/_git/%s?path=/%s&version=GC%s",
			organization, b.id.Owner, b.id.Repo, cleanPath, sha)
	}
	return fmt.Sprintf("https://dev.azure.com/%s/%s/_apis/git/repositories/%s/items?path=/%s&versionDescriptor.versionType=commit&versionDescriptor.version=%s",
		organization, b.id.Owner, b.id.Repo, cleanPath, sha)
}

func (b *Backend) replyToThread(ctx context.Context, threadID int, body string) error {
	parent := 1
	commentType := git.CommentTypeValues.Text
	comment := &git.Comment{
		Content:         &body,
		ParentCommentId: &parent,
		CommentType:     &commentType,
	}
	_, err := b.client.CreateComment(ctx, b.id.Owner, b.id.Repo, b.id.Number, threadID, comment)
	return err
}

func (b *Backend) createThread(ctx context.Context, body string, threadContext *git.CommentThreadContext) error {
	commentType := git.CommentTypeValues.Text
	status := git.CommentThreadStatusValues.Active
	thread := &git.GitPullRequestCommentThread{
		Comments: &[]git.Comment{{
			Content:     &body,
			CommentType: &commentType,
		}},
		Status:        &status,
		ThreadContext: threadContext,
	}
	_, err := b.client.CreateThread(ctx, b.id.Owner, b.id.Repo, b.id.Number, thread)
	return err
}

// inlineContext anchors a drafted comment to the right-hand side of the
// latest iteration. The diff position doubles as the right-file line here.
func inlineContext(comment domain.LocalComment) *git.CommentThreadContext {
	path := threadFilePath(comment.Path)
	line := comment.Position
	offset := 1
	return &git.CommentThreadContext{
		FilePath:       &path,
		RightFileStart: &git.CommentPosition{Line: &line, Offset: &offset},
		RightFileEnd:   &git.CommentPosition{Line: &line, Offset: &offset},
	}
}

func (b *Backend) applyDetails(pr *domain.PullRequest) {
	b.sha = pr.HeadRefOID
	b.title = pr.Title
	b.description = pr.Body
}

func (b *Backend) persist(pr *domain.PullRequest) {
	if b.store == nil {
		return
	}
	if err := b.store.Save(b.id, pr); err != nil {
		logger.LogError("AZUREDEVOPS_CACHE_SAVE", b.id.String(), err)
	}
}
