package azuredevops

import (
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"

	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/provider/common"
)

func convertPullRequest(pr *git.GitPullRequest) *domain.PullRequest {
	converted := &domain.PullRequest{
		Number:      common.GetInt(pr.PullRequestId),
		Title:       common.GetString(pr.Title),
		Body:        common.GetString(pr.Description),
		State:       mapState(pr.Status, pr.MergeStatus),
		IsDraft:     common.GetBool(pr.IsDraft),
		HeadRefName: extractBranchName(pr.SourceRefName),
		BaseRefName: extractBranchName(pr.TargetRefName),
		CreatedAt:   getTime(pr.CreationDate),
		UpdatedAt:   updateTime(pr),
	}

	if pr.LastMergeSourceCommit != nil {
		converted.HeadRefOID = common.GetString(pr.LastMergeSourceCommit.CommitId)
	}

	if pr.Labels != nil {
		converted.Labels = make([]domain.Label, 0, len(*pr.Labels))
		for _, tag := range *pr.Labels {
			converted.Labels = append(converted.Labels, domain.Label{
				Name: common.GetString(tag.Name),
			})
		}
	}

	if pr.Reviewers != nil {
		for _, reviewer := range *pr.Reviewers {
			user := convertReviewer(&reviewer)
			vote := common.GetInt(reviewer.Vote)
			if vote == 0 {
				converted.RequestedReviewers = append(converted.RequestedReviewers, user)
				continue
			}
			converted.Reviews = append(converted.Reviews, domain.Review{
				Author: user,
				State:  voteState(vote),
			})
		}
	}

	return converted
}

func updateTime(pr *git.GitPullRequest) time.Time {
	if pr.ClosedDate != nil && !pr.ClosedDate.Time.IsZero() {
		return pr.ClosedDate.Time
	}
	if pr.CreationDate != nil {
		return pr.CreationDate.Time
	}
	return time.Now()
}

func convertReviewer(reviewer *git.IdentityRefWithVote) domain.User {
	return domain.User{
		ID:    common.GetString(reviewer.Id),
		Login: common.GetString(reviewer.UniqueName),
		Name:  common.GetString(reviewer.DisplayName),
	}
}

func convertIdentity(identity *webapi.IdentityRef) domain.User {
	return domain.User{
		ID:    common.GetString(identity.Id),
		Login: common.GetString(identity.UniqueName),
		Name:  common.GetString(identity.DisplayName),
	}
}

func convertCommits(refs []git.GitCommitRef) []domain.Commit {
	commits := make([]domain.Commit, 0, len(refs))
	for _, ref := range refs {
		commit := domain.Commit{
			OID:             common.GetString(ref.CommitId),
			MessageHeadline: messageHeadline(common.GetString(ref.Comment)),
		}
		if ref.Author != nil {
			commit.Author = domain.User{
				Login: common.GetString(ref.Author.Email),
				Name:  common.GetString(ref.Author.Name),
			}
			commit.CommittedAt = getTime(ref.Author.Date)
		}
		commits = append(commits, commit)
	}
	return commits
}

func messageHeadline(message string) string {
	if i := strings.Index(message, "\n"); i >= 0 {
		return message[:i]
	}
	return message
}

// convertThreads maps top-level discussion threads onto issue comments. The
// thread id doubles as the comment id, so replies can target the thread.
// Inline threads are anchored to file positions and are not carried on the
// metadata graph.
func convertThreads(threads []git.GitPullRequestCommentThread) []domain.IssueComment {
	comments := make([]domain.IssueComment, 0, len(threads))
	for _, thread := range threads {
		if thread.ThreadContext != nil || thread.Comments == nil || len(*thread.Comments) == 0 {
			continue
		}
		if common.GetBool(thread.IsDeleted) {
			continue
		}
		root := (*thread.Comments)[0]
		if root.CommentType != nil && *root.CommentType == git.CommentTypeValues.System {
			continue
		}

		comment := domain.IssueComment{
			ID:        int64(common.GetInt(thread.Id)),
			Body:      common.GetString(root.Content),
			CreatedAt: getTime(thread.PublishedDate),
		}
		if root.Author != nil {
			comment.Author = convertIdentity(root.Author)
		}
		comments = append(comments, comment)
	}
	return comments
}
