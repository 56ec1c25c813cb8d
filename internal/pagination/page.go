package pagination

type Page[T any] struct {
	Data       []T     `json:"data"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
	Limit      int     `json:"limit"`
}

// Build turns rows fetched with limit+1 into a page. cursorFor is called with
// the last row kept when more rows remain.
func Build[T any](rows []T, limit int, cursorFor func(last T) Cursor) Page[T] {
	page := Page[T]{Data: rows, Limit: limit}
	if len(rows) > limit {
		page.Data = rows[:limit]
		page.HasMore = true
		token := Encode(cursorFor(page.Data[limit-1]))
		page.NextCursor = &token
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page
}

// Map converts the rows of a page, keeping its cursor.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Data: make([]U, 0, len(p.Data)), NextCursor: p.NextCursor, HasMore: p.HasMore, Limit: p.Limit}
	for _, row := range p.Data {
		out.Data = append(out.Data, fn(row))
	}
	return out
}
