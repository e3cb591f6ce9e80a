package common

import (
	"fmt"
	"strings"

	"github.com/johanforsgren/forgereview/internal/domain"
)

// ParseIdentifier reads a pull request identity from its canonical
// "owner/repo#number" form. The older "owner/repo/number" form is accepted
// too so stored keys from before the hash separator keep resolving.
func ParseIdentifier(identifier string) (domain.PRIdentity, error) {
	var id domain.PRIdentity

	head := identifier
	number := ""
	if i := strings.LastIndex(identifier, "#"); i >= 0 {
		head = identifier[:i]
		number = identifier[i+1:]
	}

	parts := strings.Split(head, "/")
	switch {
	case number != "" && len(parts) == 2:
		id.Owner = parts[0]
		id.Repo = parts[1]
	case number == "" && len(parts) == 3:
		id.Owner = parts[0]
		id.Repo = parts[1]
		number = parts[2]
	default:
		return domain.PRIdentity{}, fmt.Errorf("%w: expected 'owner/repo#number', got '%s'", domain.ErrInvalidIdentifierFormat, identifier)
	}

	if _, err := fmt.Sscanf(number, "%d", &id.Number); err != nil {
		return domain.PRIdentity{}, fmt.Errorf("%w: invalid PR number '%s'", domain.ErrInvalidIdentifierFormat, number)
	}

	if id.Owner == "" || id.Repo == "" || id.Number <= 0 {
		return domain.PRIdentity{}, fmt.Errorf("%w: owner, repo, and number must be non-empty and positive", domain.ErrInvalidIdentifierFormat)
	}

	return id, nil
}
