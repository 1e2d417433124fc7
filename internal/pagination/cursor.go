// Package pagination implements the cursor protocol shared by the feed,
// comment threads and bookmark lists. Repositories fetch pageSize+1 rows with
// an inclusive bound at the cursor; the builders here trim the surplus row
// and turn its id into the next cursor, so consecutive fetches over a static
// set never skip or repeat a row.
package pagination

// Page is a cursor-paged slice of items.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"nextCursor"`
	PrevCursor *string `json:"prevCursor,omitempty"`
}

// Forward builds a newest-first page from rows fetched in descending order.
// If a surplus row is present its id becomes the next cursor and the row is
// excluded from the page; the next fetch starts at that id inclusively.
func Forward[T any](rows []T, pageSize int, id func(T) string) ([]T, *string) {
	if len(rows) <= pageSize {
		return rows, nil
	}
	next := id(rows[pageSize])
	return rows[:pageSize], &next
}

// Backward builds an oldest-first page from rows holding the most recent
// pageSize+1 entries at or before the cursor, in ascending order. The
// earliest fetched row is dropped and its id exposed as the previous cursor,
// giving a stable "load older" pattern.
func Backward[T any](rows []T, pageSize int, id func(T) string) ([]T, *string) {
	if len(rows) <= pageSize {
		return rows, nil
	}
	prev := id(rows[0])
	return rows[1:], &prev
}
