package entity

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStyleDescriptor_Validates(t *testing.T) {
	_, err := NewStyleDescriptor("", "tone", "x", nil)
	require.Error(t, err)

	_, err = NewStyleDescriptor("Name", "  ", "x", nil)
	require.Error(t, err)

	blank := "   "
	d, err := NewStyleDescriptor("Name", "Warm", "Someone", &blank)
	require.NoError(t, err)
	assert.False(t, d.HasSnippet())
	assert.Nil(t, d.SourceTextSnippet)
}

func TestNewStyleDescriptor_CapsSnippet(t *testing.T) {
	long := strings.Repeat("é", MaxSnippetRunes+20)
	d, err := NewStyleDescriptor("Name", "Warm", "", &long)
	require.NoError(t, err)

	require.True(t, d.HasSnippet())
	assert.True(t, strings.HasSuffix(d.Snippet(), "..."))
	assert.Equal(t, MaxSnippetRunes+3, len([]rune(d.Snippet())))
}

func TestNewStoryState(t *testing.T) {
	st := NewStoryState(MustStyleDescriptor("Default AI", "Neutral", "", nil))

	require.Len(t, st.Messages, 2)
	assert.Equal(t, RoleSystem, st.Messages[0].Role)
	assert.Equal(t, RoleAssistant, st.Messages[1].Role)
	assert.Equal(t, DefaultVoiceID, st.NarrationVoiceID)
	assert.Nil(t, st.LastStorySlideText)
	assert.Empty(t, st.Agents)
}

func TestStoryState_UIInputsNotSerialized(t *testing.T) {
	st := NewStoryState(MustStyleDescriptor("Default AI", "Neutral", "", nil))
	st.SetUIInput(UIInputAPIKey, " sk-test ")
	st.SetLastSlide("The rain fell...")

	assert.Equal(t, "sk-test", st.APIKey())
	assert.True(t, st.HasLastSlide())

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-test")

	var back StoryState
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "", back.APIKey())
	require.NotNil(t, back.LastStorySlideText)
	assert.Equal(t, "The rain fell...", *back.LastStorySlideText)
}

func TestStoryState_Validate(t *testing.T) {
	st := &StoryState{}
	st.Append(RoleSystem, "note")
	st.Append(RoleUser, "first")
	st.Append(RoleAssistant, "reply")
	require.NoError(t, st.Validate())

	st.Append(Role("narrator"), "aside")
	err := st.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "narrator")
}

func TestStringOr(t *testing.T) {
	assert.Equal(t, "Not set", StringOr(nil, "Not set"))
	assert.Equal(t, "Not set", StringOr(StringPtr(" "), "Not set"))
	assert.Equal(t, "Fantasy", StringOr(StringPtr("Fantasy"), "Not set"))
}
