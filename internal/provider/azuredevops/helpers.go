package azuredevops

import (
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"

	"github.com/johanforsgren/forgereview/internal/domain"
)

func extractBranchName(refName *string) string {
	if refName == nil {
		return ""
	}
	return strings.TrimPrefix(*refName, "refs/heads/")
}

func itemString(item map[string]interface{}, key string) string {
	value, ok := item[key].(string)
	if !ok {
		return ""
	}
	return value
}

func itemBool(item map[string]interface{}, key string) bool {
	value, ok := item[key].(bool)
	if !ok {
		return false
	}
	return value
}

func getTime(t *azuredevops.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

// threadFilePath renders a repo path the way thread contexts expect it,
// with a leading slash.
func threadFilePath(path string) string {
	return "/" + strings.TrimPrefix(path, "/")
}

// mapState folds the service's status pair onto the state strings the rest
// of the tool works with.
func mapState(status *git.PullRequestStatus, mergeStatus *git.PullRequestAsyncStatus) string {
	if status == nil {
		return "OPEN"
	}
	switch *status {
	case git.PullRequestStatusValues.Active:
		return "OPEN"
	case git.PullRequestStatusValues.Completed:
		if mergeStatus != nil && *mergeStatus == git.PullRequestAsyncStatusValues.Succeeded {
			return "MERGED"
		}
		return "CLOSED"
	case git.PullRequestStatusValues.Abandoned:
		return "CLOSED"
	default:
		return "OPEN"
	}
}

// mapVote translates a review verdict onto the service's vote scale.
func mapVote(state domain.ReviewState) int {
	switch state {
	case domain.ReviewApprove:
		return 10
	case domain.ReviewRequestChanges:
		return -5
	default:
		return 0
	}
}

func voteState(vote int) string {
	switch {
	case vote > 0:
		return "APPROVED"
	case vote < 0:
		return "CHANGES_REQUESTED"
	default:
		return ""
	}
}

func mapMergeStrategy(strategy domain.MergeStrategy) git.GitPullRequestMergeStrategy {
	switch strategy {
	case domain.MergeSquash:
		return git.GitPullRequestMergeStrategyValues.Squash
	case domain.MergeRebase:
		return git.GitPullRequestMergeStrategyValues.Rebase
	default:
		return git.GitPullRequestMergeStrategyValues.NoFastForward
	}
}
