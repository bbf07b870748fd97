// Package intent describes user interactions as plain values.
//
// Layout code never calls a host selection API. Every selectable element
// carries an [Intent]; the renderer hands the intent of a clicked element to
// the host adapter, optionally changing its [Mode] based on modifier keys.
package intent

import (
	"fmt"

	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
)

// Kind is the interaction type. Only selection exists today.
type Kind string

const KindSelect Kind = "select"

// Mode controls how a selection combines with the current one.
type Mode string

const (
	Replace Mode = "replace"
	Toggle  Mode = "toggle"
	Add     Mode = "add"
)

// Intent asks the host to select the value behind ElemID in the given
// dimension.
type Intent struct {
	Kind           Kind            `json:"kind"`
	DimensionIndex int             `json:"dimension_index"`
	ElemID         model.ElementID `json:"element_id"`
	Mode           Mode            `json:"mode"`
}

// Select returns a replace-mode selection intent.
func Select(dim int, id model.ElementID) *Intent {
	if id.IsEmpty() {
		return nil
	}
	return &Intent{Kind: KindSelect, DimensionIndex: dim, ElemID: append(model.ElementID(nil), id...), Mode: Replace}
}

// WithMode returns a copy of i using mode m.
func (i Intent) WithMode(m Mode) Intent {
	i.Mode = m
	return i
}

// Validate checks that the intent can be handed to a host.
func (i Intent) Validate() error {
	if i.Kind != KindSelect {
		return errors.New(errors.ErrCodeInvalidInput, "unknown intent kind %q", i.Kind)
	}
	switch i.Mode {
	case Replace, Toggle, Add:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown selection mode %q", i.Mode)
	}
	if i.DimensionIndex < 0 || i.DimensionIndex > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "dimension index %d out of range", i.DimensionIndex)
	}
	if i.ElemID.IsEmpty() {
		return errors.New(errors.ErrCodeInvalidInput, "intent has no element id")
	}
	return nil
}

func (i Intent) String() string {
	return fmt.Sprintf("%s dim=%d id=%s mode=%s", i.Kind, i.DimensionIndex, i.ElemID, i.Mode)
}
