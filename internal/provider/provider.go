// Package provider constructs forge backends. Each backend instance is bound
// to exactly one pull request on one forge.
package provider

import (
	"context"
	"fmt"

	"github.com/johanforsgren/forgereview/internal/domain"
	"github.com/johanforsgren/forgereview/internal/provider/azuredevops"
	"github.com/johanforsgren/forgereview/internal/provider/common"
	"github.com/johanforsgren/forgereview/internal/provider/github"
)

// Config carries everything needed to build a backend for one pull request.
// Host applies to GitHub only and selects an enterprise API host; empty means
// the public API. Organization and ReviewerID apply to Azure DevOps only.
type Config struct {
	Type         domain.ProviderType
	Identity     domain.PRIdentity
	Token        string
	Host         string
	Organization string
	ReviewerID   string
	Store        domain.MetadataStore
}

// New builds the backend for the configured forge.
func New(ctx context.Context, cfg Config) (domain.Provider, error) {
	switch cfg.Type {
	case domain.ProviderGitHub:
		backend, err := github.NewBackend(cfg.Identity, cfg.Token, cfg.Host, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub backend: %w", err)
		}
		return backend, nil
	case domain.ProviderAzureDevOps:
		backend, err := azuredevops.NewBackend(ctx, cfg.Identity, cfg.Token, cfg.Organization, cfg.ReviewerID, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure DevOps backend: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownProvider, cfg.Type)
	}
}
