package github

import (
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/johanforsgren/forgereview/internal/domain"
)

func convertLabels(labels []*github.Label) []domain.Label {
	converted := make([]domain.Label, 0, len(labels))
	for _, label := range labels {
		converted = append(converted, domain.Label{
			Name:  label.GetName(),
			Color: label.GetColor(),
		})
	}
	return converted
}

func convertUsers(users []*github.User) []domain.User {
	converted := make([]domain.User, 0, len(users))
	for _, user := range users {
		converted = append(converted, convertUser(user))
	}
	return converted
}

func convertUser(user *github.User) domain.User {
	if user == nil {
		return domain.User{}
	}
	return domain.User{
		ID:    fmt.Sprintf("%d", user.GetID()),
		Login: user.GetLogin(),
		Name:  user.GetName(),
	}
}

func convertMilestones(milestones []*github.Milestone) []domain.Milestone {
	converted := make([]domain.Milestone, 0, len(milestones))
	for _, milestone := range milestones {
		converted = append(converted, domain.Milestone{
			Number: milestone.GetNumber(),
			Title:  milestone.GetTitle(),
			State:  milestone.GetState(),
		})
	}
	return converted
}

func convertIssue(issue *github.Issue) *domain.Issue {
	if issue == nil {
		return nil
	}
	return &domain.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		URL:    issue.GetHTMLURL(),
	}
}
