package ruleset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

func TestLoad_ShippedRuleset(t *testing.T) {
	rs, err := ruleset.Load("../../../content/ruleset")
	require.NoError(t, err)

	assert.Len(t, rs.Eras, 3)
	assert.Equal(t, "Ancient era", rs.FirstEra().Name)

	enc, ok := rs.Improvement(rs.Constants.EncampmentImprovement)
	require.True(t, ok, "encampment improvement must exist")
	assert.False(t, enc.Pillageable)

	warrior, ok := rs.Unit("Warrior")
	require.True(t, ok)
	_, ok = rs.Unit(warrior.UpgradesTo)
	assert.True(t, ok)

	barbs, ok := rs.Nation("Barbarians")
	require.True(t, ok)
	assert.True(t, barbs.Barbarian)

	embark := false
	for _, tech := range rs.Technologies {
		embark = embark || tech.EnablesEmbarkation
	}
	assert.True(t, embark, "some technology must enable embarkation")
}
