package github

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/go-github/v57/github"

	"github.com/johanforsgren/forgereview/internal/async"
	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/logger"
	"github.com/johanforsgren/forgereview/internal/provider/common"
)

// Backend implements domain.Provider for GitHub and GitHub Enterprise. One
// instance addresses exactly one pull request. Mutating operations update
// the local field mirrors only after the forge confirms the write, and any
// operation that derives new cached metadata writes it through to the store
// before returning.
type Backend struct {
	id     domain.PRIdentity
	client *Client
	store  domain.MetadataStore

	mu          sync.Mutex
	sha         string
	title       string
	description string
	labels      []string
	assignees   []string
	milestone   int
	state       string
	details     *domain.PullRequest
}

// NewBackend constructs the backend for one pull request. Previously cached
// metadata for the identity is restored from the store so a new session
// starts warm; a failed restore is logged and ignored.
func NewBackend(id domain.PRIdentity, token, host string, store domain.MetadataStore) (*Backend, error) {
	client, err := NewClient(token, host)
	if err != nil {
		return nil, err
	}

	b := &Backend{
		id:     id,
		client: client,
		store:  store,
	}

	if store != nil {
		cached, err := store.Load(id)
		switch {
		case err != nil:
			logger.LogError("GITHUB_CACHE_LOAD", id.String(), err)
		case cached != nil:
			logger.Log("GitHub: Restored cached metadata for %s", id)
			b.details = cached
			b.applyDetails(cached)
		}
	}

	return b, nil
}

func (b *Backend) GetType() domain.ProviderType {
	return domain.ProviderGitHub
}

func (b *Backend) Identity() domain.PRIdentity {
	return b.id
}

func (b *Backend) FetchDiff(ctx context.Context) (string, error) {
	logger.Log("GitHub: Fetching diff for %s", b.id)
	diff, err := b.client.GetDiff(ctx, b.id)
	if err != nil {
		return "", common.Classify("GITHUB_FETCH_DIFF", err)
	}
	logger.Log("GitHub: Received diff of %d bytes for %s", len(diff), b.id)
	return diff, nil
}

func (b *Backend) FetchCommitDiff(ctx context.Context, sha string) (string, error) {
	logger.Log("GitHub: Fetching commit diff for %s at %s", b.id, sha)
	diff, err := b.client.GetCommitDiff(ctx, b.id, sha)
	if err != nil {
		return "", common.Classify("GITHUB_FETCH_COMMIT_DIFF", err)
	}
	return diff, nil
}

// FetchDetails retrieves the full metadata graph, refreshes the local field
// mirrors, and writes the graph through to the store. An already-walked
// assignable-users list is carried over rather than refetched.
func (b *Backend) FetchDetails(ctx context.Context) (*domain.PullRequest, error) {
	logger.Log("GitHub: Fetching metadata for %s", b.id)
	pr, err := b.client.FetchMetadata(ctx, b.id)
	if err != nil {
		return nil, common.Classify("GITHUB_FETCH_DETAILS", err)
	}

	b.mu.Lock()
	if b.details != nil && len(b.details.AssignableUsers) > 0 {
		pr.AssignableUsers = b.details.AssignableUsers
	}
	b.details = pr
	b.applyDetails(pr)
	b.mu.Unlock()

	b.persist(pr)
	logger.Log("GitHub: Retrieved metadata for %s: %q", b.id, pr.Title)
	return pr, nil
}

func (b *Backend) ListLabels(ctx context.Context) ([]domain.Label, error) {
	logger.Log("GitHub: Listing labels on %s", b.id)
	labels, err := b.client.ListIssueLabels(ctx, b.id)
	if err != nil {
		return nil, common.Classify("GITHUB_LIST_LABELS", err)
	}
	return convertLabels(labels), nil
}

func (b *Backend) ListAssignees(ctx context.Context) ([]domain.User, error) {
	logger.Log("GitHub: Listing available assignees for %s/%s", b.id.Owner, b.id.Repo)
	users, err := b.client.ListAssignees(ctx, b.id)
	if err != nil {
		return nil, common.Classify("GITHUB_LIST_ASSIGNEES", err)
	}
	return convertUsers(users), nil
}

func (b *Backend) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	logger.Log("GitHub: Listing milestones for %s/%s", b.id.Owner, b.id.Repo)
	milestones, err := b.client.ListMilestones(ctx, b.id)
	if err != nil {
		return nil, common.Classify("GITHUB_LIST_MILESTONES", err)
	}
	return convertMilestones(milestones), nil
}

// ListAssignableUsers returns the page-complete assignable-users sequence.
// The full walk runs once per identity; afterwards the cached sequence is
// served from metadata without touching the network.
func (b *Backend) ListAssignableUsers(ctx context.Context) ([]domain.User, error) {
	b.mu.Lock()
	if b.details != nil && len(b.details.AssignableUsers) > 0 {
		users := append([]domain.User(nil), b.details.AssignableUsers...)
		b.mu.Unlock()
		logger.Log("GitHub: Serving %d assignable users for %s from cache", len(users), b.id)
		return users, nil
	}
	b.mu.Unlock()

	logger.Log("GitHub: Walking assignable users for %s/%s", b.id.Owner, b.id.Repo)
	users, err := b.client.ListAssignableUsers(ctx, b.id)
	if err != nil {
		return nil, common.Classify("GITHUB_LIST_ASSIGNABLE_USERS", err)
	}
	logger.Log("GitHub: Walked %d assignable users for %s/%s", len(users), b.id.Owner, b.id.Repo)

	b.mu.Lock()
	if b.details == nil {
		b.details = &domain.PullRequest{Number: b.id.Number}
	}
	b.details.AssignableUsers = users
	snapshot := b.details
	b.mu.Unlock()

	b.persist(snapshot)
	return users, nil
}

// SetLabels replaces the remote label set to exactly match labels. An empty
// set still issues the replace call, clearing every label.
func (b *Backend) SetLabels(ctx context.Context, labels []string) error {
	logger.Log("GitHub: Replacing labels on %s with %v", b.id, labels)
	if err := b.client.ReplaceLabels(ctx, b.id, labels); err != nil {
		return common.Classify("GITHUB_SET_LABELS", err)
	}

	b.mu.Lock()
	b.labels = append([]string(nil), labels...)
	b.mu.Unlock()
	return nil
}

// SetAssignees replaces the remote assignee set to exactly match logins.
// The forge has no single replace endpoint for assignees, so stale entries
// are removed and missing ones added as one joined batch.
func (b *Backend) SetAssignees(ctx context.Context, logins []string) error {
	logger.Log("GitHub: Replacing assignees on %s with %v", b.id, logins)

	current, err := b.currentAssignees(ctx)
	if err != nil {
		return err
	}

	toRemove := difference(current, logins)
	toAdd := difference(logins, current)

	ops := make([]func() error, 0, 2)
	if len(toRemove) > 0 {
		ops = append(ops, func() error { return b.client.RemoveAssignees(ctx, b.id, toRemove) })
	}
	if len(toAdd) > 0 {
		ops = append(ops, func() error { return b.client.AddAssignees(ctx, b.id, toAdd) })
	}
	if err := async.JoinAll(ops...); err != nil {
		return common.Classify("GITHUB_SET_ASSIGNEES", err)
	}

	b.mu.Lock()
	b.assignees = append([]string(nil), logins...)
	b.mu.Unlock()
	return nil
}

// SetMilestone patches the milestone and verifies the server echoed it
// back. An accepted call without the echo returns ErrMilestoneNotConfirmed,
// which callers surface as a warning.
func (b *Backend) SetMilestone(ctx context.Context, number int) error {
	logger.Log("GitHub: Setting milestone %d on %s", number, b.id)
	issue, err := b.client.SetIssueMilestone(ctx, b.id, number)
	if err != nil {
		return common.Classify("GITHUB_SET_MILESTONE", err)
	}

	if issue.Milestone == nil || issue.Milestone.GetNumber() != number {
		logger.Log("GitHub: Milestone %d on %s was not confirmed by the server", number, b.id)
		return domain.ErrMilestoneNotConfirmed
	}

	b.mu.Lock()
	b.milestone = number
	b.mu.Unlock()
	return nil
}

func (b *Backend) SetTitle(ctx context.Context, title string) error {
	logger.Log("GitHub: Updating title of %s", b.id)
	update := &github.PullRequest{Title: github.String(title)}
	if _, err := b.client.UpdatePullRequest(ctx, b.id, update); err != nil {
		return common.Classify("GITHUB_SET_TITLE", err)
	}

	b.mu.Lock()
	b.title = title
	b.mu.Unlock()
	return nil
}

func (b *Backend) SetDescription(ctx context.Context, body string) error {
	logger.Log("GitHub: Updating description of %s", b.id)
	update := &github.PullRequest{Body: github.String(body)}
	if _, err := b.client.UpdatePullRequest(ctx, b.id, update); err != nil {
		return common.Classify("GITHUB_SET_DESCRIPTION", err)
	}

	b.mu.Lock()
	b.description = body
	b.mu.Unlock()
	return nil
}

func (b *Backend) Merge(ctx context.Context, strategy domain.MergeStrategy) error {
	logger.Log("GitHub: Merging %s with strategy %q", b.id, strategy)
	result, err := b.client.Merge(ctx, b.id, string(strategy))
	if err != nil {
		return common.Classify("GITHUB_MERGE", err)
	}
	if !result.GetMerged() {
		notMerged := &domain.UnknownError{Raw: result.GetMessage()}
		logger.LogError("GITHUB_MERGE", b.id.String(), notMerged)
		return notMerged
	}
	logger.Log("GitHub: Merged %s", b.id)
	return nil
}

// AddReaction attaches content to the sub-resource selected by target. An
// unknown target is a programming error, not a runtime failure.
func (b *Backend) AddReaction(ctx context.Context, target domain.ReactionTarget, subjectID int64, content string) error {
	logger.Log("GitHub: Adding %q reaction to %s %d on %s", content, target, subjectID, b.id)
	var err error
	switch target {
	case domain.ReactionOnPull:
		_, err = b.client.CreateIssueReaction(ctx, b.id, content)
	case domain.ReactionOnIssueComment:
		_, err = b.client.CreateIssueCommentReaction(ctx, b.id, subjectID, content)
	case domain.ReactionOnReviewComment:
		_, err = b.client.CreateReviewCommentReaction(ctx, b.id, subjectID, content)
	default:
		panic(fmt.Sprintf("github: unsupported reaction target %q", target))
	}
	if err != nil {
		return common.Classify("GITHUB_ADD_REACTION", err)
	}
	return nil
}

func (b *Backend) RemoveReaction(ctx context.Context, target domain.ReactionTarget, subjectID, reactionID int64) error {
	logger.Log("GitHub: Removing reaction %d from %s %d on %s", reactionID, target, subjectID, b.id)
	var err error
	switch target {
	case domain.ReactionOnPull:
		err = b.client.DeleteIssueReaction(ctx, b.id, reactionID)
	case domain.ReactionOnIssueComment:
		err = b.client.DeleteIssueCommentReaction(ctx, b.id, subjectID, reactionID)
	case domain.ReactionOnReviewComment:
		err = b.client.DeleteReviewCommentReaction(ctx, b.id, subjectID, reactionID)
	default:
		panic(fmt.Sprintf("github: unsupported reaction target %q", target))
	}
	if err != nil {
		return common.Classify("GITHUB_REMOVE_REACTION", err)
	}
	return nil
}

// SendReplies posts every reply in the batch concurrently and returns once
// all of them have resolved. On failure the first observed error is
// reported; replies that already landed stay in place.
func (b *Backend) SendReplies(ctx context.Context, batch domain.ReplyBatch) error {
	logger.Log("GitHub: Sending %d replies on %s", len(batch.Replies), b.id)

	ops := make([]func() error, 0, len(batch.Replies))
	for _, reply := range batch.Replies {
		ops = append(ops, func() error {
			return b.client.CreateReplyComment(ctx, b.id, reply.ReplyToID, reply.Body)
		})
	}

	if err := async.JoinAll(ops...); err != nil {
		return common.Classify("GITHUB_SEND_REPLIES", err)
	}
	logger.Log("GitHub: Sent %d replies on %s", len(batch.Replies), b.id)
	return nil
}

// SendReview submits the review as a single call. Inline comments go out
// ordered by ascending position; feedback and commit id are attached only
// when present.
func (b *Backend) SendReview(ctx context.Context, submission domain.ReviewSubmission) error {
	logger.Log("GitHub: Submitting %s review on %s with %d comments", submission.State, b.id, len(submission.Comments))

	comments := append([]domain.LocalComment(nil), submission.Comments...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Position < comments[j].Position
	})

	review := &github.PullRequestReviewRequest{
		Event: github.String(string(submission.State)),
	}
	if submission.Feedback != "" {
		review.Body = github.String(submission.Feedback)
	}
	b.mu.Lock()
	if b.sha != "" {
		review.CommitID = github.String(b.sha)
	}
	b.mu.Unlock()

	if len(comments) > 0 {
		draft := make([]*github.DraftReviewComment, 0, len(comments))
		for _, comment := range comments {
			draft = append(draft, &github.DraftReviewComment{
				Path:     github.String(comment.Path),
				Position: github.Int(comment.Position),
				Body:     github.String(comment.Body),
			})
		}
		review.Comments = draft
	}

	if err := b.client.CreateReview(ctx, b.id, review); err != nil {
		return common.Classify("GITHUB_SEND_REVIEW", err)
	}
	logger.Log("GitHub: Review submitted on %s", b.id)
	return nil
}

func (b *Backend) RequestReview(ctx context.Context, userIDs []string) error {
	logger.Log("GitHub: Requesting review from %d users on %s", len(userIDs), b.id)
	nodeID, err := b.nodeID(ctx)
	if err != nil {
		return err
	}
	if err := b.client.RequestReviewers(ctx, nodeID, userIDs); err != nil {
		return common.Classify("GITHUB_REQUEST_REVIEW", err)
	}
	return nil
}

func (b *Backend) NewIssue(ctx context.Context, title, body string) (*domain.Issue, error) {
	logger.Log("GitHub: Creating issue %q in %s/%s", title, b.id.Owner, b.id.Repo)
	issue, err := b.client.CreateIssue(ctx, b.id, title, body)
	if err != nil {
		return nil, common.Classify("GITHUB_NEW_ISSUE", err)
	}
	created := convertIssue(issue)
	logger.Log("GitHub: Created issue #%d", created.Number)
	return created, nil
}

func (b *Backend) NewIssueComment(ctx context.Context, body string) error {
	logger.Log("GitHub: Commenting on %s", b.id)
	if err := b.client.CreateIssueComment(ctx, b.id, body); err != nil {
		return common.Classify("GITHUB_NEW_ISSUE_COMMENT", err)
	}
	return nil
}

// applyDetails refreshes the mutable field mirrors from a fetched graph.
// Callers hold b.mu unless the instance is not yet shared.
func (b *Backend) applyDetails(pr *domain.PullRequest) {
	b.sha = pr.HeadRefOID
	b.title = pr.Title
	b.description = pr.Body
	b.state = pr.State

	labels := make([]string, 0, len(pr.Labels))
	for _, label := range pr.Labels {
		labels = append(labels, label.Name)
	}
	b.labels = labels

	assignees := make([]string, 0, len(pr.Assignees))
	for _, user := range pr.Assignees {
		assignees = append(assignees, user.Login)
	}
	b.assignees = assignees

	if pr.Milestone != nil {
		b.milestone = pr.Milestone.Number
	} else {
		b.milestone = 0
	}
}

func (b *Backend) persist(pr *domain.PullRequest) {
	if b.store == nil {
		return
	}
	if err := b.store.Save(b.id, pr); err != nil {
		logger.LogError("GITHUB_CACHE_SAVE", b.id.String(), err)
	}
}

func (b *Backend) currentAssignees(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	if b.details != nil {
		current := append([]string(nil), b.assignees...)
		b.mu.Unlock()
		return current, nil
	}
	b.mu.Unlock()

	pr, err := b.client.GetPullRequest(ctx, b.id)
	if err != nil {
		return nil, common.Classify("GITHUB_SET_ASSIGNEES", err)
	}
	current := make([]string, 0, len(pr.Assignees))
	for _, user := range pr.Assignees {
		current = append(current, user.GetLogin())
	}
	return current, nil
}

func (b *Backend) nodeID(ctx context.Context) (string, error) {
	b.mu.Lock()
	if b.details != nil && b.details.NodeID != "" {
		nodeID := b.details.NodeID
		b.mu.Unlock()
		return nodeID, nil
	}
	b.mu.Unlock()

	pr, err := b.FetchDetails(ctx)
	if err != nil {
		return "", err
	}
	return pr.NodeID, nil
}

func difference(from, exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, v := range exclude {
		excluded[v] = struct{}{}
	}
	result := make([]string, 0, len(from))
	for _, v := range from {
		if _, ok := excluded[v]; !ok {
			result = append(result, v)
		}
	}
	return result
}
