package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_ToggleReaction(t *testing.T) {
	m := &Message{}

	assert.True(t, m.ToggleReaction("🎉", "u1"))
	assert.True(t, m.ToggleReaction("🎉", "u2"))
	assert.Equal(t, []string{"u1", "u2"}, m.Reactions["🎉"])

	assert.False(t, m.ToggleReaction("🎉", "u1"))
	assert.Equal(t, []string{"u2"}, m.Reactions["🎉"])

	assert.False(t, m.ToggleReaction("🎉", "u2"))
	_, ok := m.Reactions["🎉"]
	assert.False(t, ok, "empty reactions are dropped")
}

func TestParticipants(t *testing.T) {
	got := Participants("u2", []string{"u3", " u1 ", "u2", "", "u3"})
	assert.Equal(t, []string{"u1", "u2", "u3"}, got)
}

func TestSendMessageInput(t *testing.T) {
	in := SendMessageInput{Content: "  héllo  "}
	in.Normalize()
	assert.Equal(t, "héllo", in.Content)
	assert.Equal(t, MessageText, in.Type)
	assert.Equal(t, 5, in.ContentLength())

	long := SendMessageInput{Content: strings.Repeat("é", MaxMessageLength)}
	assert.Equal(t, MaxMessageLength, long.ContentLength())
}

func TestTypes(t *testing.T) {
	assert.True(t, ChatProject.Valid())
	assert.False(t, ChatType("channel").Valid())
	assert.True(t, MessageFile.Valid())
	assert.False(t, MessageType("video").Valid())
}
