package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueTestModel(posts ...post) *model {
	return &model{
		styles:         newStyles(),
		config:         &portalConfig{},
		queuePosts:     posts,
		queueSelection: make(map[string]bool),
	}
}

func queuePost(id string) post {
	return post{ID: id, Commentary: "post " + id, Status: "approved"}
}

func TestToggleQueueSelectAll(t *testing.T) {
	m := queueTestModel(queuePost("1"), queuePost("2"), queuePost("3"))
	m.queueSelection["2"] = true

	m.toggleQueueSelectAll()
	assert.Len(t, m.selectedQueueIDs(), 3, "partial selection turns into select-all")

	m.toggleQueueSelectAll()
	assert.Empty(t, m.selectedQueueIDs(), "select-all with everything selected clears")
}

func TestToggleQueueSelectAllEmptyQueue(t *testing.T) {
	m := queueTestModel()
	m.toggleQueueSelectAll()
	assert.Empty(t, m.selectedQueueIDs())
}

func TestToggleQueueSelection(t *testing.T) {
	m := queueTestModel(queuePost("1"))
	m.toggleQueueSelection("1")
	assert.Equal(t, []string{"1"}, m.selectedQueueIDs())
	m.toggleQueueSelection("1")
	assert.Empty(t, m.selectedQueueIDs())
}

func TestHandlePublishDonePartialFailure(t *testing.T) {
	m := queueTestModel(queuePost("1"), queuePost("2"), queuePost("3"))
	m.queueSelection["1"] = true
	m.queueSelection["2"] = true
	m.queueSelection["3"] = true
	m.queueBusy = true

	cmd := m.handlePublishDone(publishDoneMsg{
		resp:  &publishResponse{Successful: 2},
		total: 3,
	})

	assert.Equal(t, "Published 2/3", m.queueNotice)
	assert.Empty(t, m.selectedQueueIDs(), "selection clears even on partial failure")
	assert.False(t, m.queueBusy)
	assert.NotNil(t, cmd, "a reload follows every publish")
}

func TestHandlePublishDoneError(t *testing.T) {
	m := queueTestModel(queuePost("1"))
	m.queueSelection["1"] = true
	m.queueBusy = true

	cmd := m.handlePublishDone(publishDoneMsg{err: &apiError{Status: 500, Body: "upstream down"}})

	require.Error(t, m.queueErr)
	assert.False(t, m.queueUnauthorized)
	assert.Equal(t, []string{"1"}, m.selectedQueueIDs(), "selection survives a transport failure")
	assert.Nil(t, cmd)
}

func TestHandlePublishDoneUnauthorizedHidesQueue(t *testing.T) {
	m := queueTestModel(queuePost("1"))
	m.queueSelection["1"] = true
	m.queueBusy = true

	cmd := m.handlePublishDone(publishDoneMsg{err: &apiError{Status: 401, Body: "expired"}})

	assert.True(t, m.queueUnauthorized)
	assert.Empty(t, m.queuePosts, "rows hide behind the sign-in prompt")
	assert.Empty(t, m.selectedQueueIDs())
	assert.Nil(t, cmd)
}

func TestHandleApprovedLoadedDropsVanishedSelections(t *testing.T) {
	m := queueTestModel(queuePost("1"), queuePost("2"))
	m.queueSelection["1"] = true
	m.queueSelection["2"] = true

	m.handleApprovedLoaded(approvedLoadedMsg{posts: []post{queuePost("2"), queuePost("3")}})

	assert.Equal(t, []string{"2"}, m.selectedQueueIDs())
	assert.False(t, m.queueUnauthorized)
}

func TestHandleApprovedLoadedUnauthorized(t *testing.T) {
	m := queueTestModel(queuePost("1"))
	m.queueSelection["1"] = true

	m.handleApprovedLoaded(approvedLoadedMsg{err: &apiError{Status: 401}})

	assert.True(t, m.queueUnauthorized)
	require.Error(t, m.queueErr)
	assert.Empty(t, m.queuePosts, "rows hide behind the sign-in prompt")
	assert.Empty(t, m.selectedQueueIDs())
}

func TestPublishSelectedRequiresSelection(t *testing.T) {
	m := queueTestModel(queuePost("1"))
	cmd := m.publishSelectedCmd()
	assert.Nil(t, cmd)
	assert.Equal(t, "Select at least one post to publish", m.queueNotice)
}
