package character

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"story-weaver-api/internal/domain/entity"
	apperrors "story-weaver-api/pkg/errors"
)

func newTestGenerator() *Generator {
	return NewGenerator(rand.New(rand.NewPCG(42, 7)))
}

func TestGenerate_EmptyNameFails(t *testing.T) {
	g := newTestGenerator()
	for _, name := range []string{"", "   "} {
		_, err := g.Generate(name, "x")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	}
}

func TestGenerate_FillsFromPools(t *testing.T) {
	g := newTestGenerator()

	for i := 0; i < 50; i++ {
		p, err := g.Generate("Zara", "")
		require.NoError(t, err)

		assert.Equal(t, "Zara", p.Name)
		assert.Equal(t, DefaultRole, p.Role)
		require.Len(t, p.Traits, 3)
		assert.Subset(t, TraitsPool(), p.Traits)
		assert.Len(t, uniq(p.Traits), 3, "traits must be drawn without replacement")
		assert.Contains(t, GoalsPool(), p.Goal)
		assert.Contains(t, ConflictsPool(), p.InternalConflict)
	}
}

func TestGenerate_KeepsSuppliedFields(t *testing.T) {
	p, err := newTestGenerator().Generate("Eleanor", "Governess",
		WithTraits("observant"),
		WithGoal("find meaning"),
		WithConflict("duty vs desire"),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"observant"}, p.Traits)
	assert.Equal(t, "find meaning", p.Goal)
	assert.Equal(t, "duty vs desire", p.InternalConflict)
	assert.Equal(t, "Governess", p.Role)
}

func TestGenerate_NilRandUsesDefaultSource(t *testing.T) {
	p, err := NewGenerator(nil).Generate("Kai", "pilot")
	require.NoError(t, err)
	assert.Len(t, p.Traits, 3)
}

func TestDescribe(t *testing.T) {
	p := entity.CharacterProfile{
		Name:             "Ravi",
		Role:             "smuggler",
		Traits:           []string{"cunning", "loyal"},
		Goal:             "earn redemption",
		InternalConflict: "past betrayal",
	}
	assert.Equal(t,
		"Ravi is a smuggler who is cunning, loyal. Their main goal is to earn redemption. They are haunted by past betrayal.",
		Describe(p))

	partial := entity.CharacterProfile{Name: "Mo"}
	assert.Equal(t,
		"Mo is a character who is not specified. Their main goal is to achieve something. They are haunted by an unknown issue.",
		Describe(partial))

	assert.Equal(t, "Invalid agent data provided.", Describe(entity.CharacterProfile{}))
}

func TestSummaries(t *testing.T) {
	assert.Equal(t, NoCharactersSummary, Summaries(nil))

	got := Summaries([]entity.CharacterProfile{{Name: "A"}, {Name: "B"}})
	assert.Contains(t, got, "A is a character")
	assert.Contains(t, got, "\nB is a character")
}

func uniq(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
