package async

import "context"

// Page is one cursor-paginated response: the nodes in server order plus the
// paging state needed to continue the walk.
type Page[T any] struct {
	Nodes       []T
	HasNextPage bool
	EndCursor   string
}

// FetchPage issues the request for a single page. An empty cursor asks for
// the first page.
type FetchPage[T any] func(ctx context.Context, cursor string) (Page[T], error)

// WalkPages drives fetch to completion one page at a time: the next page is
// not requested until the previous one has resolved, nodes accumulate in
// server order, and the walk stops once a page reports no successor. A page
// claiming a successor without a cursor also stops the walk, so a malformed
// response cannot re-fetch the same page forever.
func WalkPages[T any](ctx context.Context, fetch FetchPage[T]) ([]T, error) {
	var (
		all    []T
		cursor string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Nodes...)
		if !page.HasNextPage || page.EndCursor == "" {
			return all, nil
		}
		cursor = page.EndCursor
	}
}
