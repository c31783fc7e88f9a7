package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaylistRemoveKeepsOrder(t *testing.T) {
	p := &Playlist{VideoIDs: []uint64{4, 2, 9, 7}}
	original := p.VideoIDs

	assert.True(t, p.Contains(9))
	assert.True(t, p.Remove(9))
	assert.Equal(t, []uint64{4, 2, 7}, p.VideoIDs)
	assert.False(t, p.Contains(9))
	// 底层数组不被修改
	assert.Equal(t, []uint64{4, 2, 9, 7}, original)

	assert.False(t, p.Remove(100))
	assert.Equal(t, []uint64{4, 2, 7}, p.VideoIDs)
}
