package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryKindHasCategory(t *testing.T) {
	for _, k := range ActionKinds {
		assert.NotEmpty(t, k.Category(), "kind %s has no category", k)
		assert.Contains(t, Categories, k.Category())
	}
}

func TestParseActionKind(t *testing.T) {
	k, err := ParseActionKind("like_multiple")
	require.NoError(t, err)
	assert.Equal(t, ActionLikeMultiple, k)

	_, err = ParseActionKind("retweet")
	assert.Error(t, err)
}

func TestFailureCarriesError(t *testing.T) {
	o := Failure(ActionFollow, "follow button not found", ErrElementNotFound)
	assert.Equal(t, StatusError, o.Status)
	assert.Equal(t, ErrElementNotFound.Error(), o.Error)
	assert.False(t, o.OK())

	o = Failure(ActionFollow, "boom", nil)
	assert.Empty(t, o.Error)
}
