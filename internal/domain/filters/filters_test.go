package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	testCases := []struct {
		name          string
		page, limit   int
		expectedPage  int
		expectedLimit int
	}{
		{"defaults", 0, 0, 1, 24},
		{"negative", -3, -10, 1, 24},
		{"explicit", 3, 10, 3, 10},
		{"limit capped", 1, 1000, 1, MaxLimit},
		{"page capped", math.MaxInt, 24, math.MaxInt/24 + 1, 24},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit)
			assert.Equal(t, tc.expectedPage, p.Page)
			assert.Equal(t, tc.expectedLimit, p.Limit)
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, 0, NewPagination(1, 24).Offset())
	assert.Equal(t, 24, NewPagination(2, 24).Offset())
	assert.Equal(t, 50, NewPagination(6, 10).Offset())

	for _, limit := range []int{1, 7, 24, MaxLimit} {
		offset := NewPagination(math.MaxInt, limit).Offset()
		assert.GreaterOrEqual(t, offset, 0, "limit %d", limit)
		assert.Greater(t, offset, math.MaxInt-limit, "limit %d", limit)
	}
}

func TestPaginationTotalPages(t *testing.T) {
	p := NewPagination(1, 24)
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(24))
	assert.Equal(t, 2, p.TotalPages(25))
	assert.Equal(t, 2, p.TotalPages(30))
}
