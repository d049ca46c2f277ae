package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination_Normalization(t *testing.T) {
	p := NewPagination(0, 0, 25)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 10, p.ItemsPerPage)
	assert.Equal(t, 3, p.TotalPages)

	capped := NewPagination(1, 500, 1000)
	assert.Equal(t, 100, capped.ItemsPerPage)
}

func TestNewPagination_PageFlags(t *testing.T) {
	first := NewPagination(1, 10, 35)
	assert.False(t, first.HasPrevPage)
	assert.True(t, first.HasNextPage)

	middle := NewPagination(2, 10, 35)
	assert.True(t, middle.HasPrevPage)
	assert.True(t, middle.HasNextPage)

	last := NewPagination(4, 10, 35)
	assert.True(t, last.HasPrevPage)
	assert.False(t, last.HasNextPage)
}

func TestNewPagination_EmptyTotal(t *testing.T) {
	p := NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
}

func TestPagination_Skip(t *testing.T) {
	assert.Equal(t, int64(0), NewPagination(1, 10, 100).Skip())
	assert.Equal(t, int64(30), NewPagination(4, 10, 100).Skip())
}
