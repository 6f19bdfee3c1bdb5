package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/internal/repository"
)

func seededContentRepo(t *testing.T, n int) *fakeContentRepo {
	t.Helper()
	repo := newFakeContentRepo()
	for i := 0; i < n; i++ {
		err := repo.Insert(context.Background(), &domain.ContentItem{
			ExternalItemID: fmt.Sprintf("v%03d", i),
		})
		require.NoError(t, err)
	}
	return repo
}

func TestContentList_Pagination(t *testing.T) {
	svc := NewContentService(seededContentRepo(t, 45))

	tests := []struct {
		page, pageSize int
		wantLen        int
	}{
		{1, 20, 20},
		{2, 20, 20},
		{3, 20, 5},
		{4, 20, 0},
		{1, 100, 45},
	}

	for _, tt := range tests {
		items, total, err := svc.List(context.Background(), tt.page, tt.pageSize)
		require.NoError(t, err)
		assert.Equal(t, 45, total, "total is independent of paging")
		assert.Len(t, items, tt.wantLen, "page %d size %d", tt.page, tt.pageSize)
	}
}

func TestContentList_NormalizesParams(t *testing.T) {
	svc := NewContentService(seededContentRepo(t, 3))

	items, total, err := svc.List(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)
}

func TestContentGet(t *testing.T) {
	repo := seededContentRepo(t, 1)
	svc := NewContentService(repo)

	item, err := svc.Get(context.Background(), "v000")
	require.NoError(t, err)
	assert.Equal(t, "v000", item.ExternalItemID)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
