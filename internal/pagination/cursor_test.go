package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id int }

// fetchDesc mimics a repository fetch: up to limit rows in descending order,
// with an inclusive bound at the cursor.
func fetchDesc(all []row, cursor *string, limit int) []row {
	bound := int(^uint(0) >> 1)
	if cursor != nil {
		fmt.Sscan(*cursor, &bound)
	}
	var out []row
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].id > bound {
			continue
		}
		out = append(out, all[i])
	}
	return out
}

func TestForwardWalkVisitsEveryRowOnce(t *testing.T) {
	const total, pageSize = 25, 10
	all := make([]row, total)
	for i := range all {
		all[i] = row{id: i + 1}
	}

	var visited []int
	var cursor *string
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10, "walk did not terminate")
		rows := fetchDesc(all, cursor, pageSize+1)
		page, next := Forward(rows, pageSize, func(r row) string { return fmt.Sprint(r.id) })
		for _, r := range page {
			visited = append(visited, r.id)
		}
		if next == nil {
			break
		}
		cursor = next
	}

	require.Len(t, visited, total)
	seen := make(map[int]bool, total)
	for _, id := range visited {
		assert.False(t, seen[id], "row %d visited twice", id)
		seen[id] = true
	}
}

func TestForwardShortPageHasNoCursor(t *testing.T) {
	rows := []row{{3}, {2}, {1}}
	page, next := Forward(rows, 10, func(r row) string { return fmt.Sprint(r.id) })
	assert.Len(t, page, 3)
	assert.Nil(t, next)
}

func TestForwardExactPageHasNoCursor(t *testing.T) {
	rows := []row{{2}, {1}}
	page, next := Forward(rows, 2, func(r row) string { return fmt.Sprint(r.id) })
	assert.Len(t, page, 2)
	assert.Nil(t, next)
}

func TestForwardSurplusRowBecomesCursor(t *testing.T) {
	rows := []row{{5}, {4}, {3}}
	page, next := Forward(rows, 2, func(r row) string { return fmt.Sprint(r.id) })
	assert.Equal(t, []row{{5}, {4}}, page)
	require.NotNil(t, next)
	assert.Equal(t, "3", *next)
}

func TestBackwardSurplusRowBecomesPrevCursor(t *testing.T) {
	// Ascending window of the 3 most recent rows at or before the cursor.
	rows := []row{{3}, {4}, {5}}
	page, prev := Backward(rows, 2, func(r row) string { return fmt.Sprint(r.id) })
	assert.Equal(t, []row{{4}, {5}}, page)
	require.NotNil(t, prev)
	assert.Equal(t, "3", *prev)
}

func TestBackwardShortWindowHasNoCursor(t *testing.T) {
	rows := []row{{1}, {2}}
	page, prev := Backward(rows, 5, func(r row) string { return fmt.Sprint(r.id) })
	assert.Len(t, page, 2)
	assert.Nil(t, prev)
}
