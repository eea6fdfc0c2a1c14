package diet

import "time"

// Domain events raised while a week is generated. They are diagnostics only.

// RepeatForcedEvent is raised when the repetition search is exhausted and a
// previously used name is accepted.
type RepeatForcedEvent struct {
	Day        int
	Slot       Slot
	Role       Role
	Name       string
	occurredAt time.Time
}

// NewRepeatForcedEvent creates the event
func NewRepeatForcedEvent(day int, slot Slot, role Role, name string) RepeatForcedEvent {
	return RepeatForcedEvent{Day: day, Slot: slot, Role: role, Name: name, occurredAt: time.Now()}
}

func (e RepeatForcedEvent) EventName() string     { return "plan.repeat_forced" }
func (e RepeatForcedEvent) OccurredAt() time.Time { return e.occurredAt }

// FallbackLevel says how far a candidate search had to fall back
type FallbackLevel string

const (
	FallbackCategory    FallbackLevel = "category"
	FallbackDefaults    FallbackLevel = "defaults"
	FallbackPlaceholder FallbackLevel = "placeholder"
)

// FallbackUsedEvent is raised when a candidate search did not find a
// preference match and widened its pool.
type FallbackUsedEvent struct {
	Role       Role
	Level      FallbackLevel
	occurredAt time.Time
}

// NewFallbackUsedEvent creates the event
func NewFallbackUsedEvent(role Role, level FallbackLevel) FallbackUsedEvent {
	return FallbackUsedEvent{Role: role, Level: level, occurredAt: time.Now()}
}

func (e FallbackUsedEvent) EventName() string     { return "plan.fallback_used" }
func (e FallbackUsedEvent) OccurredAt() time.Time { return e.occurredAt }
