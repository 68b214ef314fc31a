package util

import (
	"math"
	"strconv"
)

// ParseIntDefault returns def for an empty or non-numeric s.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate turns a 1-based page into an offset. Pages below 1 are page 1.
// Pages whose offset would not fit in an int are pulled back to the last one
// that does.
func Calculate(page, size int) (page1 int, offset int) {
	if page < 1 {
		page = 1
	}
	if size > 0 && page-1 > math.MaxInt/size {
		page = math.MaxInt / size
	}
	return page, (page - 1) * size
}

func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
