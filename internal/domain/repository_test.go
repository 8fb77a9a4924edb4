package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxLimit, Offset: 10}, Page{Limit: 10_000, Offset: 10}.Normalize())
	assert.Equal(t, Page{Limit: 5}, Page{Limit: 5, Offset: -3}.Normalize())
}

func TestNewListResultNeverNil(t *testing.T) {
	res := NewListResult[int](nil, 0, Page{Limit: 20})
	assert.NotNil(t, res.Items)
	assert.Equal(t, 20, res.Limit)
}
