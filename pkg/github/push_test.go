package github

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pushPayload = `{
  "ref": "refs/heads/feature/login",
  "after": "9f1c2ab",
  "repository": {"full_name": "org/svc"},
  "head_commit": {"id": "9f1c2ab", "message": "Fix login", "author": {"name": "Dana", "username": "dana"}}
}`

func TestPushEvent(t *testing.T) {
	var e PushEvent
	require.NoError(t, json.Unmarshal([]byte(pushPayload), &e))
	assert.Equal(t, "org/svc", e.Repository.FullName)
	assert.Equal(t, "feature/login", e.Branch())
	assert.Equal(t, "9f1c2ab", e.After)
	assert.Equal(t, "dana", e.Author())
	assert.Equal(t, "Fix login", e.Message())
}

func TestPushEventWithoutHeadCommit(t *testing.T) {
	e := PushEvent{Ref: "refs/tags/v1.0.0"}
	assert.Equal(t, "refs/tags/v1.0.0", e.Branch())
	assert.Empty(t, e.Author())
	assert.Empty(t, e.Message())

	e.HeadCommit = &PushCommit{Author: PushAuthor{Name: "Dana"}}
	assert.Equal(t, "Dana", e.Author())
}
