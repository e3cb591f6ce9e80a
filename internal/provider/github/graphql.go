package github

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"

	"github.com/johanforsgren/forgereview/internal/async"
	"github.com/johanforsgren/forgereview/internal/domain"
)

// prDetailsQuery is the one large query behind FetchDetails. Connection
// sizes are fixed; a review session works on a single PR, so the tail of a
// pathological thread is an acceptable loss.
type prDetailsQuery struct {
	Repository struct {
		PullRequest struct {
			ID             githubv4.ID
			Number         githubv4.Int
			DatabaseID     githubv4.Int
			Title          githubv4.String
			Body           githubv4.String
			State          githubv4.String
			IsDraft        githubv4.Boolean
			HeadRefOid     githubv4.String
			HeadRefName    githubv4.String
			BaseRefName    githubv4.String
			CreatedAt      githubv4.DateTime
			UpdatedAt      githubv4.DateTime
			ChangedFiles   githubv4.Int
			ReviewDecision githubv4.String

			Milestone *struct {
				Number githubv4.Int
				Title  githubv4.String
				State  githubv4.String
			}

			Labels struct {
				Nodes []struct {
					Name  githubv4.String
					Color githubv4.String
				}
			} `graphql:"labels(first: 100)"`

			Assignees struct {
				Nodes []userFields
			} `graphql:"assignees(first: 100)"`

			ProjectsV2 struct {
				Nodes []struct {
					Title githubv4.String
				}
			} `graphql:"projectsV2(first: 10)"`

			SuggestedReviewers []struct {
				Reviewer userFields
			}

			ReviewRequests struct {
				Nodes []struct {
					RequestedReviewer struct {
						User userFields `graphql:"... on User"`
					}
				}
			} `graphql:"reviewRequests(first: 100)"`

			Commits struct {
				Nodes []struct {
					Commit struct {
						Oid             githubv4.String
						MessageHeadline githubv4.String
						Author          struct {
							Name githubv4.String
							Date githubv4.DateTime
							User struct {
								Login githubv4.String
							}
						}
					}
				}
			} `graphql:"commits(last: 100)"`

			Reactions struct {
				Nodes []reactionFields
			} `graphql:"reactions(first: 100)"`

			Comments struct {
				Nodes []struct {
					DatabaseID githubv4.Int
					Author     struct {
						Login githubv4.String
					}
					Body      githubv4.String
					CreatedAt githubv4.DateTime
					Reactions struct {
						Nodes []reactionFields
					} `graphql:"reactions(first: 50)"`
				}
			} `graphql:"comments(first: 100)"`

			Reviews struct {
				Nodes []struct {
					DatabaseID githubv4.Int
					Author     struct {
						Login githubv4.String
					}
					State       githubv4.String
					Body        githubv4.String
					SubmittedAt githubv4.DateTime
					Comments    struct {
						Nodes []struct {
							DatabaseID githubv4.Int
							Path       githubv4.String
							Position   githubv4.Int
							Body       githubv4.String
							DiffHunk   githubv4.String
							CreatedAt  githubv4.DateTime
							Author     struct {
								Login githubv4.String
							}
						}
					} `graphql:"comments(first: 100)"`
				}
			} `graphql:"reviews(first: 50)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type userFields struct {
	ID    githubv4.ID
	Login githubv4.String
	Name  githubv4.String
}

type reactionFields struct {
	DatabaseID githubv4.Int
	Content    githubv4.String
	User       struct {
		Login githubv4.String
	}
}

type assignableUsersQuery struct {
	Repository struct {
		AssignableUsers struct {
			Nodes    []userFields
			PageInfo struct {
				HasNextPage githubv4.Boolean
				EndCursor   githubv4.String
			}
		} `graphql:"assignableUsers(first: 100, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// FetchMetadata retrieves the full metadata graph for one pull request in a
// single GraphQL round trip.
func (c *Client) FetchMetadata(ctx context.Context, id domain.PRIdentity) (*domain.PullRequest, error) {
	var q prDetailsQuery
	vars := map[string]interface{}{
		"owner":  githubv4.String(id.Owner),
		"name":   githubv4.String(id.Repo),
		"number": githubv4.Int(id.Number),
	}
	if err := c.graphql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("failed to fetch pull request metadata: %w", err)
	}
	return convertMetadata(&q), nil
}

// ListAssignableUsers walks the repository's assignable-users connection to
// the last page, one cursor at a time.
func (c *Client) ListAssignableUsers(ctx context.Context, id domain.PRIdentity) ([]domain.User, error) {
	return async.WalkPages(ctx, func(ctx context.Context, cursor string) (async.Page[domain.User], error) {
		var q assignableUsersQuery
		vars := map[string]interface{}{
			"owner":  githubv4.String(id.Owner),
			"name":   githubv4.String(id.Repo),
			"cursor": (*githubv4.String)(nil),
		}
		if cursor != "" {
			vars["cursor"] = githubv4.NewString(githubv4.String(cursor))
		}
		if err := c.graphql.Query(ctx, &q, vars); err != nil {
			return async.Page[domain.User]{}, fmt.Errorf("failed to list assignable users: %w", err)
		}

		conn := q.Repository.AssignableUsers
		users := make([]domain.User, 0, len(conn.Nodes))
		for _, node := range conn.Nodes {
			users = append(users, convertGraphUser(node))
		}
		return async.Page[domain.User]{
			Nodes:       users,
			HasNextPage: bool(conn.PageInfo.HasNextPage),
			EndCursor:   string(conn.PageInfo.EndCursor),
		}, nil
	})
}

// RequestReviewers invites the given users onto the pull request. Existing
// review requests are kept.
func (c *Client) RequestReviewers(ctx context.Context, pullRequestID string, userIDs []string) error {
	var m struct {
		RequestReviews struct {
			PullRequest struct {
				ID githubv4.ID
			}
		} `graphql:"requestReviews(input: $input)"`
	}

	ids := make([]githubv4.ID, 0, len(userIDs))
	for _, userID := range userIDs {
		ids = append(ids, githubv4.ID(userID))
	}
	input := githubv4.RequestReviewsInput{
		PullRequestID: githubv4.ID(pullRequestID),
		UserIDs:       &ids,
		Union:         githubv4.NewBoolean(true),
	}

	if err := c.graphql.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("failed to request reviewers: %w", err)
	}
	return nil
}

func convertMetadata(q *prDetailsQuery) *domain.PullRequest {
	node := &q.Repository.PullRequest

	pr := &domain.PullRequest{
		Number:         int(node.Number),
		DatabaseID:     int64(node.DatabaseID),
		Title:          string(node.Title),
		Body:           string(node.Body),
		State:          string(node.State),
		IsDraft:        bool(node.IsDraft),
		HeadRefOID:     string(node.HeadRefOid),
		HeadRefName:    string(node.HeadRefName),
		BaseRefName:    string(node.BaseRefName),
		CreatedAt:      node.CreatedAt.Time,
		UpdatedAt:      node.UpdatedAt.Time,
		ChangedFiles:   int(node.ChangedFiles),
		ReviewDecision: string(node.ReviewDecision),
	}
	if node.ID != nil {
		pr.NodeID = fmt.Sprintf("%v", node.ID)
	}

	if node.Milestone != nil {
		pr.Milestone = &domain.Milestone{
			Number: int(node.Milestone.Number),
			Title:  string(node.Milestone.Title),
			State:  string(node.Milestone.State),
		}
	}

	pr.Labels = make([]domain.Label, 0, len(node.Labels.Nodes))
	for _, label := range node.Labels.Nodes {
		pr.Labels = append(pr.Labels, domain.Label{
			Name:  string(label.Name),
			Color: string(label.Color),
		})
	}

	pr.Assignees = make([]domain.User, 0, len(node.Assignees.Nodes))
	for _, user := range node.Assignees.Nodes {
		pr.Assignees = append(pr.Assignees, convertGraphUser(user))
	}

	pr.Projects = make([]string, 0, len(node.ProjectsV2.Nodes))
	for _, project := range node.ProjectsV2.Nodes {
		pr.Projects = append(pr.Projects, string(project.Title))
	}

	pr.SuggestedReviewers = make([]domain.User, 0, len(node.SuggestedReviewers))
	for _, suggestion := range node.SuggestedReviewers {
		pr.SuggestedReviewers = append(pr.SuggestedReviewers, convertGraphUser(suggestion.Reviewer))
	}

	pr.RequestedReviewers = make([]domain.User, 0, len(node.ReviewRequests.Nodes))
	for _, request := range node.ReviewRequests.Nodes {
		if request.RequestedReviewer.User.Login == "" {
			continue
		}
		pr.RequestedReviewers = append(pr.RequestedReviewers, convertGraphUser(request.RequestedReviewer.User))
	}

	pr.Commits = make([]domain.Commit, 0, len(node.Commits.Nodes))
	for _, commitNode := range node.Commits.Nodes {
		commit := commitNode.Commit
		pr.Commits = append(pr.Commits, domain.Commit{
			OID:             string(commit.Oid),
			MessageHeadline: string(commit.MessageHeadline),
			Author: domain.User{
				Login: string(commit.Author.User.Login),
				Name:  string(commit.Author.Name),
			},
			CommittedAt: commit.Author.Date.Time,
		})
	}

	pr.Reactions = convertGraphReactions(node.Reactions.Nodes)

	pr.Comments = make([]domain.IssueComment, 0, len(node.Comments.Nodes))
	for _, comment := range node.Comments.Nodes {
		pr.Comments = append(pr.Comments, domain.IssueComment{
			ID:        int64(comment.DatabaseID),
			Author:    domain.User{Login: string(comment.Author.Login)},
			Body:      string(comment.Body),
			CreatedAt: comment.CreatedAt.Time,
			Reactions: convertGraphReactions(comment.Reactions.Nodes),
		})
	}

	pr.Reviews = make([]domain.Review, 0, len(node.Reviews.Nodes))
	for _, review := range node.Reviews.Nodes {
		converted := domain.Review{
			ID:          int64(review.DatabaseID),
			Author:      domain.User{Login: string(review.Author.Login)},
			State:       string(review.State),
			Body:        string(review.Body),
			SubmittedAt: review.SubmittedAt.Time,
		}
		converted.Comments = make([]domain.ReviewComment, 0, len(review.Comments.Nodes))
		for _, comment := range review.Comments.Nodes {
			converted.Comments = append(converted.Comments, domain.ReviewComment{
				ID:        int64(comment.DatabaseID),
				Path:      string(comment.Path),
				Position:  int(comment.Position),
				Body:      string(comment.Body),
				Author:    domain.User{Login: string(comment.Author.Login)},
				DiffHunk:  string(comment.DiffHunk),
				CreatedAt: comment.CreatedAt.Time,
			})
		}
		pr.Reviews = append(pr.Reviews, converted)
	}

	return pr
}

func convertGraphUser(user userFields) domain.User {
	converted := domain.User{
		Login: string(user.Login),
		Name:  string(user.Name),
	}
	if user.ID != nil {
		converted.ID = fmt.Sprintf("%v", user.ID)
	}
	return converted
}

func convertGraphReactions(nodes []reactionFields) []domain.Reaction {
	reactions := make([]domain.Reaction, 0, len(nodes))
	for _, node := range nodes {
		reactions = append(reactions, domain.Reaction{
			ID:      int64(node.DatabaseID),
			Content: reactionContent(string(node.Content)),
			User:    domain.User{Login: string(node.User.Login)},
		})
	}
	return reactions
}

// reactionContent maps the GraphQL reaction enum onto the REST content
// token, so reactions read over GraphQL can be removed over REST.
func reactionContent(enum string) string {
	switch enum {
	case "THUMBS_UP":
		return domain.ReactionThumbsUp
	case "THUMBS_DOWN":
		return domain.ReactionThumbsDown
	case "LAUGH":
		return domain.ReactionLaugh
	case "CONFUSED":
		return domain.ReactionConfused
	case "HEART":
		return domain.ReactionHeart
	case "HOORAY":
		return domain.ReactionHooray
	case "ROCKET":
		return domain.ReactionRocket
	case "EYES":
		return domain.ReactionEyes
	default:
		return enum
	}
}
