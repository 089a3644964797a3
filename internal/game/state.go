package game

// LevelState is the phase of a level.
type LevelState string

const (
	StatePlaying      LevelState = "PLAYING"
	StateWonAnimation LevelState = "WON_ANIMATION"
	StateWon          LevelState = "WON"
)

// EventKind classifies input delivered to a level.
type EventKind string

const (
	PointerPress   EventKind = "pointer_press"
	PointerRelease EventKind = "pointer_release"
	KeyPress       EventKind = "key_press"
)

// PointerEvent is one discrete input event. HasPosition is false when the
// source could not report where the pointer was.
type PointerEvent struct {
	Kind        EventKind
	Position    Vec2
	HasPosition bool
}

func Press(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerPress, Position: NewVec2(x, y), HasPosition: true}
}

func Release(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerRelease, Position: NewVec2(x, y), HasPosition: true}
}

// PendingShot is the drag gesture between press and release.
type PendingShot struct {
	Initial    Vec2 `json:"initial"`
	Current    Vec2 `json:"current"`
	HasCurrent bool `json:"has_current"`
}
