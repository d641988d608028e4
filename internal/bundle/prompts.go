package bundle

import (
	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// DiscardRequest describes unsaved changes that a preset switch would throw
// away.
type DiscardRequest struct {
	Type    model.PresetType
	Preset  string
	Changes []preset.Change

	// TargetType and Target name the switch that causes the discard.
	TargetType model.PresetType
	Target     string
}

// Prompts are the yes/no decisions the resolver needs from the user. A nil
// MayDiscard or ConfirmReplace declines; a nil MaySwitchTechnology allows.
type Prompts struct {
	MayDiscard          func(DiscardRequest) bool
	MaySwitchTechnology func(from, to model.Technology) bool
	ConfirmReplace      func(t model.PresetType, name string) bool
}

// AcceptAll answers yes to every prompt.
func AcceptAll() Prompts {
	return Prompts{
		MayDiscard:          func(DiscardRequest) bool { return true },
		MaySwitchTechnology: func(model.Technology, model.Technology) bool { return true },
		ConfirmReplace:      func(model.PresetType, string) bool { return true },
	}
}

func (p Prompts) mayDiscard(r DiscardRequest) bool {
	return p.MayDiscard != nil && p.MayDiscard(r)
}

func (p Prompts) maySwitchTechnology(from, to model.Technology) bool {
	return p.MaySwitchTechnology == nil || p.MaySwitchTechnology(from, to)
}

func (p Prompts) confirmReplace(t model.PresetType, name string) bool {
	return p.ConfirmReplace != nil && p.ConfirmReplace(t, name)
}
