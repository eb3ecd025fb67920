package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymousUsersAreDistinct(t *testing.T) {
	a := NewAnonymousUser()
	b := NewAnonymousUser()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsLabeled())
}

func TestRelabelPreservesIdentity(t *testing.T) {
	u := NewAnonymousUser()
	relabeled := u.Relabel(3)
	assert.Equal(t, u.ID, relabeled.ID)
	assert.True(t, relabeled.IsLabeled())
	assert.Equal(t, 3, relabeled.Label)
}
