package store

import (
	"context"

	"github.com/amishk599/pljobs/internal/model"
)

// NopStore is used in dry-run mode. Reads go to the wrapped store when there
// is one; writes are discarded but report success.
type NopStore struct {
	inner model.PostingStore
}

func NewNopStore(inner model.PostingStore) *NopStore { return &NopStore{inner: inner} }

func (s *NopStore) ExistingPostings(ctx context.Context) ([]model.ExistingPosting, error) {
	if s.inner == nil {
		return nil, nil
	}
	return s.inner.ExistingPostings(ctx)
}

func (s *NopStore) InsertPostings(_ context.Context, postings []model.Posting) (int, error) {
	return len(postings), nil
}

func (s *NopStore) RecordRun(context.Context, *model.RunSummary) error { return nil }
