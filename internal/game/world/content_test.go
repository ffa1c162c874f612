package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
)

func TestLoadScenarioFromFile_Skirmish(t *testing.T) {
	rs, err := ruleset.Load("../../../content/ruleset")
	require.NoError(t, err)

	s, err := world.LoadScenarioFromFile("../../../content/scenarios/skirmish.yaml", rs)
	require.NoError(t, err)

	assert.Len(t, s.Civilizations(), 3)
	assert.Len(t, s.Cities(), 3)
	assert.Len(t, s.Encampments(), 2)
	require.NotNil(t, s.Barbarians())

	rome, ok := s.Civilization("Rome")
	require.True(t, ok)
	greece, ok := s.Civilization("Greece")
	require.True(t, ok)
	assert.True(t, rome.IsAtWarWith(greece))
	assert.False(t, rome.AIControlled)
	assert.True(t, greece.AIControlled)

	for _, c := range s.Cities() {
		assert.Equal(t, c.MaxHealth(rs), c.Health, c.Name)
	}
}

func TestLoadScenarioFromFile_Missing(t *testing.T) {
	_, err := world.LoadScenarioFromFile("does-not-exist.yaml", nil)
	assert.Error(t, err)
}
