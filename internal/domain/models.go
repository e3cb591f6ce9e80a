package domain

import (
	"fmt"
	"time"
)

type ProviderType string

const (
	ProviderGitHub      ProviderType = "github"
	ProviderAzureDevOps ProviderType = "azuredevops"
)

type ReviewState string

const (
	ReviewApprove        ReviewState = "APPROVE"
	ReviewRequestChanges ReviewState = "REQUEST_CHANGES"
	ReviewComment        ReviewState = "COMMENT"
)

type MergeStrategy string

const (
	MergeCommit MergeStrategy = "merge"
	MergeSquash MergeStrategy = "squash"
	MergeRebase MergeStrategy = "rebase"
)

// ReactionTarget selects which sub-resource of a pull request a reaction
// applies to. Passing anything else to a provider is a programming error.
type ReactionTarget string

const (
	ReactionOnPull          ReactionTarget = "pull"
	ReactionOnIssueComment  ReactionTarget = "issue_comment"
	ReactionOnReviewComment ReactionTarget = "review_comment"
)

const (
	ReactionThumbsUp   = "+1"
	ReactionThumbsDown = "-1"
	ReactionLaugh      = "laugh"
	ReactionConfused   = "confused"
	ReactionHeart      = "heart"
	ReactionHooray     = "hooray"
	ReactionRocket     = "rocket"
	ReactionEyes       = "eyes"
)

// PRIdentity addresses exactly one pull request on one forge. It is fixed
// for the lifetime of a provider instance.
type PRIdentity struct {
	Owner  string
	Repo   string
	Number int
}

func (id PRIdentity) String() string {
	return fmt.Sprintf("%s/%s#%d", id.Owner, id.Repo, id.Number)
}

type User struct {
	ID    string
	Login string
	Name  string
}

type Label struct {
	Name  string
	Color string
}

type Milestone struct {
	Number int
	Title  string
	State  string
}

type Commit struct {
	OID             string
	MessageHeadline string
	Author          User
	CommittedAt     time.Time
}

type Reaction struct {
	ID      int64
	Content string
	User    User
}

type IssueComment struct {
	ID        int64
	Author    User
	Body      string
	CreatedAt time.Time
	Reactions []Reaction
}

type ReviewComment struct {
	ID        int64
	Path      string
	Position  int
	Body      string
	Author    User
	DiffHunk  string
	CreatedAt time.Time
}

type Review struct {
	ID          int64
	Author      User
	State       string
	Body        string
	SubmittedAt time.Time
	Comments    []ReviewComment
}

// PullRequest is the full metadata graph for one pull request, as returned
// by a provider's FetchDetails. AssignableUsers is empty until the first
// ListAssignableUsers walk completes and is then carried along with the rest
// of the graph through the metadata store.
type PullRequest struct {
	NodeID             string
	Number             int
	DatabaseID         int64
	Title              string
	Body               string
	State              string
	IsDraft            bool
	HeadRefOID         string
	HeadRefName        string
	BaseRefName        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ChangedFiles       int
	ReviewDecision     string
	Milestone          *Milestone
	Labels             []Label
	Assignees          []User
	Projects           []string
	SuggestedReviewers []User
	RequestedReviewers []User
	Commits            []Commit
	Reactions          []Reaction
	Comments           []IssueComment
	Reviews            []Review
	AssignableUsers    []User
}

// LocalComment is an inline review comment drafted locally, anchored to a
// diff position, waiting to be sent as part of a ReviewSubmission.
type LocalComment struct {
	Path     string
	Position int
	Body     string
}

type ReviewSubmission struct {
	State    ReviewState
	Feedback string
	Comments []LocalComment
}

type Reply struct {
	ReplyToID int64
	Body      string
}

// ReplyBatch groups independent replies to existing review comments. The
// target pull request and head sha ride on the provider instance.
type ReplyBatch struct {
	Replies []Reply
}

type Issue struct {
	Number int
	Title  string
	URL    string
}

type DiffLine struct {
	Type    string
	Content string
	OldLine int
	NewLine int
}

type DiffHunk struct {
	Header string
	Lines  []DiffLine
}

type FileDiff struct {
	OldPath   string
	NewPath   string
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	Hunks     []DiffHunk
}

type Diff struct {
	Files []FileDiff
}
