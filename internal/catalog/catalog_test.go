package catalog

import (
	"testing"

	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	g, ok := Lookup(domain.GameCountingFruits)
	require.True(t, ok)
	assert.Equal(t, 120, g.DurationSeconds())
	assert.Equal(t, 10, g.Rewards.Correct)
	assert.Equal(t, 50, g.Rewards.Completion)

	_, ok = Lookup("chess")
	assert.False(t, ok)
}

func TestEveryGameHasAKind(t *testing.T) {
	for _, g := range All() {
		assert.NotEqual(t, domain.KindUnknown, g.ID.Kind(), "game %s", g.ID)
		assert.Positive(t, g.Duration, "game %s", g.ID)
		assert.Positive(t, g.QuestionCount, "game %s", g.ID)
	}
}

func TestForAge(t *testing.T) {
	ids := func(games []domain.Game) []domain.GameID {
		var out []domain.GameID
		for _, g := range games {
			out = append(out, g.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []domain.GameID{
		domain.GameCountingFruits, domain.GameFindMatch, domain.GameColorLearn,
	}, ids(ForAge(2)))
	assert.Contains(t, ids(ForAge(6)), domain.GameMemoryPairs)
	assert.Empty(t, ForAge(9))
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, "counting", cats[0].Name)

	total := 0
	for _, c := range cats {
		total += c.Count
		assert.Len(t, ByCategory(c.Name), c.Count)
	}
	assert.Equal(t, len(All()), total)
}
