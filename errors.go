package bramble

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectorNotFound indicates a connector type is absent from an
	// element or the anchor index is out of range.
	ErrConnectorNotFound = errors.New("bramble: connector not found")
	// ErrEmptyConnectorSet indicates chain resolution reached an element with
	// no outgoing connectors before the target length.
	ErrEmptyConnectorSet = errors.New("bramble: element has no connectors")
	// ErrInvalidChainLength indicates min > max or a negative bound.
	ErrInvalidChainLength = errors.New("bramble: invalid chain length bounds")
	// ErrAssetParse indicates the geometry parser rejected an asset.
	ErrAssetParse = errors.New("bramble: asset parse failure")
	// ErrMissingEvolutionStage indicates an evolution stage lacks data it
	// references (parent index, animation step or children).
	ErrMissingEvolutionStage = errors.New("bramble: missing evolution stage data")
	// ErrUnknownCreatureType indicates the catalog has no such creature type.
	ErrUnknownCreatureType = errors.New("bramble: unknown creature type")
	// ErrUnknownElement indicates the catalog or asset source has no such element.
	ErrUnknownElement = errors.New("bramble: unknown element")
	// ErrInvalidCatalog indicates a malformed catalog entry.
	ErrInvalidCatalog = errors.New("bramble: invalid catalog")
	// ErrDisposed indicates the creature was disposed while a transition was pending.
	ErrDisposed = errors.New("bramble: creature disposed")
)

// StageError reports the controller phase in which a transition failed.
type StageError struct {
	Phase Phase
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("bramble: stage %s: %v", e.Phase, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
