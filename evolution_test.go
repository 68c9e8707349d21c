package bramble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEvolutions(t *testing.T) {
	stages := testEvolutions(t)
	require.Len(t, stages, 2)

	s0 := stages[0]
	assert.Equal(t, []float64{1, 1, 1}, s0.MainSectionChildren)
	assert.Equal(t, []float64{1, 0.8, 0.6}, s0.MainSectionChildrenAnims[1])
	assert.Equal(t, []float64{1, 1}, s0.MirrorSectionChildren)
	assert.Equal(t, 0.5, s0.MirrorSectionScale)
	assert.Equal(t, 1, s0.MirrorSectionParentIndex)

	assert.Equal(t, 1.0, stages[1].MirrorSectionScale, "missing scale defaults to 1")
}

func TestLoadEvolutionsErrors(t *testing.T) {
	_, err := LoadEvolutions([]byte("[]"))
	assert.ErrorIs(t, err, ErrMissingEvolutionStage)

	_, err = LoadEvolutions([]byte("- main_section_children: [1, 2"))
	assert.ErrorIs(t, err, ErrMissingEvolutionStage)
}

func TestEvolutionStageChecks(t *testing.T) {
	s := EvolutionStage{
		MainSectionChildrenAnims: [2][]float64{{1}, nil},
		MirrorSectionChildren:    []float64{1},
		MirrorSectionParentIndex: 2,
	}
	assert.NoError(t, s.checkAnim(0))
	assert.ErrorIs(t, s.checkAnim(1), ErrMissingEvolutionStage)
	assert.ErrorIs(t, s.checkAnim(2), ErrMissingEvolutionStage)

	assert.NoError(t, s.checkMirror(3))
	assert.ErrorIs(t, s.checkMirror(2), ErrMissingEvolutionStage)

	s.MirrorSectionChildren = nil
	assert.ErrorIs(t, s.checkMirror(3), ErrMissingEvolutionStage)
}
