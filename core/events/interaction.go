package events

// KindInteractionTriggered marks the user's single interaction gesture. What
// it means (start listening, stop listening, interrupt) depends on the
// orchestrator's state at the moment it is processed.
const KindInteractionTriggered Kind = "user_input.interaction_triggered"

type InteractionTriggeredEvent struct {
	Base
}

func NewInteractionTriggeredEvent() InteractionTriggeredEvent {
	return InteractionTriggeredEvent{Base: NewBase(KindInteractionTriggered)}
}

func (e InteractionTriggeredEvent) String() string {
	return "interaction triggered"
}
