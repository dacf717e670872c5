package domain

import "fmt"

// ExternalFunction is the closed set of gameplay side effects a dialogue can request.
type ExternalFunction string

const (
	FuncPlayEmote      ExternalFunction = "PlayEmote"
	FuncPausePlayer    ExternalFunction = "PausePlayer"
	FuncResumePlayer   ExternalFunction = "ResumePlayer"
	FuncGiveItem       ExternalFunction = "GiveItem"
	FuncRemoveItem     ExternalFunction = "RemoveItem"
	FuncPlayAnimation  ExternalFunction = "PlayAnimation"
	FuncPlaySound      ExternalFunction = "PlaySound"
	FuncUpdateQuest    ExternalFunction = "UpdateQuest"
	FuncTeleportPlayer ExternalFunction = "TeleportPlayer"
	FuncSpawnNPC       ExternalFunction = "SpawnNPC"
	FuncShowUI         ExternalFunction = "ShowUI"
	FuncHideUI         ExternalFunction = "HideUI"
	FuncSetVariable    ExternalFunction = "SetVariable"
	FuncTriggerEvent   ExternalFunction = "TriggerEvent"
	FuncCustom         ExternalFunction = "Custom"
)

// ExternalFunctions lists every member of the enumeration in declaration order.
var ExternalFunctions = []ExternalFunction{
	FuncPlayEmote, FuncPausePlayer, FuncResumePlayer, FuncGiveItem, FuncRemoveItem,
	FuncPlayAnimation, FuncPlaySound, FuncUpdateQuest, FuncTeleportPlayer, FuncSpawnNPC,
	FuncShowUI, FuncHideUI, FuncSetVariable, FuncTriggerEvent, FuncCustom,
}

// Valid reports whether f belongs to the enumeration.
func (f ExternalFunction) Valid() bool {
	for _, known := range ExternalFunctions {
		if f == known {
			return true
		}
	}
	return false
}

// FunctionCall is the tagged variant {typed function, Custom(name)} plus one
// free-form string parameter. The dialogue core only packages it; dispatch is
// the host's job.
type FunctionCall struct {
	Function  ExternalFunction `json:"function" yaml:"function" mapstructure:"function"`
	Name      string           `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"` // Custom only
	Parameter string           `json:"parameter,omitempty" yaml:"parameter,omitempty" mapstructure:"parameter"`
}

// IsCustom reports whether the call targets a host-defined custom function.
func (c FunctionCall) IsCustom() bool {
	return c.Function == FuncCustom
}

func (c FunctionCall) String() string {
	if c.IsCustom() {
		return fmt.Sprintf("Custom(%s)[%s]", c.Name, c.Parameter)
	}
	return fmt.Sprintf("%s[%s]", c.Function, c.Parameter)
}
