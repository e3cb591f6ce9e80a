package github

import (
	"context"
	"fmt"

	"github.com/johanforsgren/forgereview/internal/logger"
	"github.com/johanforsgren/forgereview/internal/provider/common"
)

// FileURL resolves the location of one file at a given commit. With blob
// set it returns the human-browsable blob page; otherwise it returns the
// contents API endpoint that serves the raw bytes when asked with the raw
// media type. Pure computation; no network.
func (b *Backend) FileURL(sha, path string, blob bool) string {
	host := b.client.host
	if host == "" {
		host = defaultHost
	}

	if blob {
		return fmt.Sprintf("https://%s/%s/%s/blob/%s/%s", host, b.id.Owner, b.id.Repo, sha, path)
	}
	if host == defaultHost {
		return fmt.Sprintf("https://api.%s/repos/%s/%s/contents/%s?ref=%s", host, b.id.Owner, b.id.Repo, path, sha)
	}
	return fmt.Sprintf("https://%s/api/v3/repos/%s/%s/contents/%s?ref=%s", host, b.id.Owner, b.id.Repo, path, sha)
}

// FetchFileContents downloads the raw bytes of one file at a commit, for
// binary payloads the diff cannot carry.
func (b *Backend) FetchFileContents(ctx context.Context, sha, path string) ([]byte, error) {
	url := b.FileURL(sha, path, false)
	logger.Log("GitHub: Fetching file contents %s@%s for %s", path, sha, b.id)
	data, err := b.client.FetchFileContents(ctx, url)
	if err != nil {
		return nil, common.Classify("GITHUB_FILE_CONTENTS", err)
	}
	return data, nil
}
