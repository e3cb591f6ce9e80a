package async

import "golang.org/x/sync/errgroup"

// JoinAll launches every fn concurrently, blocks until all of them have
// returned, and reports the first non-nil error observed. Work that already
// succeeded when a sibling fails is not undone, and failures past the first
// are dropped.
func JoinAll(fns ...func() error) error {
	var g errgroup.Group
	for _, fn := range fns {
		g.Go(fn)
	}
	return g.Wait()
}
