package domain

import "context"

// Provider is the capability surface a forge backend exposes for one pull
// request. Every implementation must honor the same externally observable
// semantics regardless of forge: set-replacing writes, single-fire batch
// completion, and classified failures.
type Provider interface {
	GetType() ProviderType

	Identity() PRIdentity

	FetchDiff(ctx context.Context) (string, error)

	FetchCommitDiff(ctx context.Context, sha string) (string, error)

	FetchDetails(ctx context.Context) (*PullRequest, error)

	ListLabels(ctx context.Context) ([]Label, error)

	ListAssignees(ctx context.Context) ([]User, error)

	ListMilestones(ctx context.Context) ([]Milestone, error)

	ListAssignableUsers(ctx context.Context) ([]User, error)

	SetLabels(ctx context.Context, labels []string) error

	SetAssignees(ctx context.Context, logins []string) error

	SetMilestone(ctx context.Context, number int) error

	SetTitle(ctx context.Context, title string) error

	SetDescription(ctx context.Context, body string) error

	Merge(ctx context.Context, strategy MergeStrategy) error

	AddReaction(ctx context.Context, target ReactionTarget, subjectID int64, content string) error

	RemoveReaction(ctx context.Context, target ReactionTarget, subjectID, reactionID int64) error

	SendReplies(ctx context.Context, batch ReplyBatch) error

	SendReview(ctx context.Context, submission ReviewSubmission) error

	RequestReview(ctx context.Context, userIDs []string) error

	NewIssue(ctx context.Context, title, body string) (*Issue, error)

	NewIssueComment(ctx context.Context, body string) error

	FileURL(sha, path string, blob bool) string
}
