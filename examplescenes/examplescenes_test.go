package examplescenes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"ancient_study", "crime_scene", "fantasy_tavern", "modern_office"}, Names())
}

func TestGet(t *testing.T) {
	ctx, err := Get("fantasy_tavern")
	require.NoError(t, err)
	assert.NotEmpty(t, ctx.Script)
	assert.NotEmpty(t, ctx.Requirement)

	_, err = Get("space_station")
	assert.Error(t, err)
}
