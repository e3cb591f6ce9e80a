package domain

// MetadataStore persists the last fetched metadata graph per pull request.
// Providers write through to it whenever they fetch or derive new cached
// data, so the in-memory copy and the store never diverge after a write.
// Load returns (nil, nil) when nothing is stored for the identity.
// Invalidation is the caller's responsibility, never the provider's.
type MetadataStore interface {
	Load(id PRIdentity) (*PullRequest, error)

	Save(id PRIdentity, pr *PullRequest) error
}
