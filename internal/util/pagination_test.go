package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 3, ParseIntDefault("3", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("abc", 1))
	assert.Equal(t, -2, ParseIntDefault("-2", 1))
}

func TestCalculate(t *testing.T) {
	page, offset := Calculate(3, 12)
	assert.Equal(t, 3, page)
	assert.Equal(t, 24, offset)

	page, offset = Calculate(0, 12)
	assert.Equal(t, 1, page)
	assert.Equal(t, 0, offset)
}

func TestCalculate_HugePageDoesNotOverflow(t *testing.T) {
	page, offset := Calculate(math.MaxInt, 12)
	assert.Equal(t, math.MaxInt/12, page)
	assert.Equal(t, (math.MaxInt/12-1)*12, offset)
	assert.Positive(t, offset)

	page, offset = Calculate(math.MaxInt, 1)
	assert.Equal(t, math.MaxInt, page)
	assert.Equal(t, math.MaxInt-1, offset)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 0, TotalPages(5, 0))
}
