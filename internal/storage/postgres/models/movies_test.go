package models

import (
	"testing"

	"moviecatalog/proj/internal/domain/filters"

	"github.com/stretchr/testify/assert"
)

func TestMovieFilterClause(t *testing.T) {
	testCases := []struct {
		name         string
		filter       filters.MovieFilter
		expectedSQL  string
		expectedArgs []any
	}{
		{
			name:   "empty",
			filter: filters.MovieFilter{},
		},
		{
			name:         "query",
			filter:       filters.MovieFilter{Query: "Fighter"},
			expectedSQL:  "WHERE (title ILIKE $1 OR EXISTS (SELECT 1 FROM unnest(genres) AS g WHERE g ILIKE $1))",
			expectedArgs: []any{"%Fighter%"},
		},
		{
			name:         "query is escaped",
			filter:       filters.MovieFilter{Query: `100%_\`},
			expectedSQL:  "WHERE (title ILIKE $1 OR EXISTS (SELECT 1 FROM unnest(genres) AS g WHERE g ILIKE $1))",
			expectedArgs: []any{`%100\%\_\\%`},
		},
		{
			name:         "genres",
			filter:       filters.MovieFilter{Genres: []string{"Action", "Drama"}},
			expectedSQL:  "WHERE genres && $1::text[]",
			expectedArgs: []any{[]string{"Action", "Drama"}},
		},
		{
			name: "dashboard counters",
			filter: filters.MovieFilter{
				Status:   "active",
				Featured: filters.Bool(true),
				Pinned:   filters.Bool(false),
			},
			expectedSQL:  "WHERE status = $1 AND featured = $2 AND pinned = $3",
			expectedArgs: []any{"active", true, false},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, args := movieFilterClause(tc.filter)
			assert.Equal(t, tc.expectedSQL, sql)
			assert.Equal(t, tc.expectedArgs, args)
		})
	}
}
