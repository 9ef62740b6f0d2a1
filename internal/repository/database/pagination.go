package database

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return DefaultPageSize
	}
	return limit
}

// nextCursor 多查一条判断是否还有下一页，返回截断后的长度和下一页游标
func nextCursor(n, limit int, idAt func(i int) uint64) (int, uint64) {
	if n > limit {
		return limit, idAt(limit - 1)
	}
	return n, 0
}
