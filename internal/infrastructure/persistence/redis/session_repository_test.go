package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"story-weaver-api/internal/domain/entity"
)

func sampleState() *entity.StoryState {
	snippet := "It was a truth universally acknowledged..."
	state := entity.NewStoryState(entity.StyleDescriptor{
		NameDisplay:       "Bennet",
		Tone:              "witty",
		InspiredBy:        "Jane Austen",
		SourceTextSnippet: &snippet,
	})
	state.NarrationVoiceID = "BENNET_REGENCY"
	state.Config.Genre = entity.StringPtr("Romance")
	state.AddAgent(entity.CharacterProfile{Name: "Darcy", Role: "Love interest", Traits: []string{"proud"}})
	state.Append(entity.RoleUser, "Begin at the ball.")
	state.SetLastSlide("The ballroom glittered.")
	state.SetUIInput(entity.UIInputAPIKey, "sk-secret")
	return state
}

func TestStateCodec_RoundTrip(t *testing.T) {
	state := sampleState()

	raw, err := encodeState(state)
	require.NoError(t, err)

	got, err := decodeState(raw)
	require.NoError(t, err)

	assert.Equal(t, state.Messages, got.Messages)
	assert.Equal(t, state.Agents, got.Agents)
	assert.Equal(t, "Romance", entity.StringOr(got.Config.Genre, ""))
	assert.Nil(t, got.Config.Setting)
	assert.Equal(t, "BENNET_REGENCY", got.NarrationVoiceID)
	assert.Equal(t, state.Config.NarrationStyle.Snippet(), got.Config.NarrationStyle.Snippet())
	require.True(t, got.HasLastSlide())
	assert.Equal(t, "The ballroom glittered.", *got.LastStorySlideText)
}

func TestStateCodec_DropsUIInputs(t *testing.T) {
	raw, err := encodeState(sampleState())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret")

	got, err := decodeState(raw)
	require.NoError(t, err)
	assert.NotNil(t, got.UIInputs)
	assert.Empty(t, got.APIKey())
}

func TestStateCodec_WireFields(t *testing.T) {
	raw, err := encodeState(sampleState())
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, k := range []string{"messages", "agents", "story_config", "narration_voice_id", "last_story_slide_text"} {
		assert.Contains(t, fields, k)
	}
}

func TestStateCodec_Errors(t *testing.T) {
	_, err := encodeState(nil)
	assert.Error(t, err)

	_, err = decodeState([]byte("{not json"))
	assert.Error(t, err)

	_, err = decodeState([]byte(`{"messages":[{"role":"narrator","content":"aside"}]}`))
	assert.Error(t, err)

	got, err := decodeState([]byte(`{"messages":[]}`))
	require.NoError(t, err)
	assert.NotNil(t, got.Agents)
}

func TestSessionRepository_Key(t *testing.T) {
	repo := NewSessionRepository(nil, "", 0)
	assert.Equal(t, "story_weaver:session:abc", repo.key("abc"))

	repo = NewSessionRepository(nil, "test:", 0)
	assert.Equal(t, "test:abc", repo.key("abc"))
}
