package bramble

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EvolutionStage parametrizes one cycle of restructuring. Children slices
// hold one scale factor per element of the section: the main section keeps
// its elements and animates towards these scales, the mirror section is
// rebuilt with exactly len(MirrorSectionChildren) elements.
type EvolutionStage struct {
	MainSectionChildren      []float64    `yaml:"main_section_children"`
	MainSectionChildrenAnims [2][]float64 `yaml:"main_section_children_anims"`
	MirrorSectionChildren    []float64    `yaml:"mirror_section_children"`
	MirrorSectionScale       float64      `yaml:"mirror_section_scale"`
	MirrorSectionParentIndex int          `yaml:"mirror_section_parent_index"`
}

// LoadEvolutions decodes a YAML list of evolution stages.
func LoadEvolutions(data []byte) ([]EvolutionStage, error) {
	var stages []EvolutionStage
	if err := yaml.Unmarshal(data, &stages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingEvolutionStage, err)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrMissingEvolutionStage)
	}
	for i := range stages {
		if stages[i].MirrorSectionScale == 0 {
			stages[i].MirrorSectionScale = 1
		}
	}
	return stages, nil
}

// checkAnim reports whether animation step i is present.
func (s *EvolutionStage) checkAnim(i int) error {
	if i < 0 || i >= len(s.MainSectionChildrenAnims) || len(s.MainSectionChildrenAnims[i]) == 0 {
		return fmt.Errorf("%w: animation step %d", ErrMissingEvolutionStage, i)
	}
	return nil
}

// checkMirror reports whether the stage can anchor a mirror section on a
// main section of mainLen elements.
func (s *EvolutionStage) checkMirror(mainLen int) error {
	if len(s.MirrorSectionChildren) == 0 {
		return fmt.Errorf("%w: mirror section has no children", ErrMissingEvolutionStage)
	}
	if s.MirrorSectionParentIndex < 0 || s.MirrorSectionParentIndex >= mainLen {
		return fmt.Errorf("%w: mirror parent index %d outside main section of %d",
			ErrMissingEvolutionStage, s.MirrorSectionParentIndex, mainLen)
	}
	return nil
}
