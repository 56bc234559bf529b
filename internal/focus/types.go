package focus

import (
	"strings"
	"time"
)

// WindowSize is the number of per-second samples reduced to one verdict.
const WindowSize = 15

// WindowSeconds is the wall-clock length of one window.
const WindowSeconds = 15

// State is the focus state reported for a frame or a window.
type State string

const (
	StateFocused    State = "Focused"
	StateDistracted State = "Distracted"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	return s == StateFocused || s == StateDistracted
}

// Category is the distraction category of a single frame.
type Category string

const (
	CategoryNone             Category = ""
	CategoryPhone            Category = "Phone"
	CategoryAbsent           Category = "Absent"
	CategoryFaceNotVisible   Category = "FaceNotVisible"
	CategoryLikelyDistracted Category = "LikelyDistracted"
	CategoryInactiveModel    Category = "InactiveModel"
)

// Reasons reported by the classifier service.
const (
	RawReasonPhone          = "Phone"
	RawReasonAbsent         = "Absent"
	RawReasonFaceNotVisible = "Likely Distraction: Full face not visible"
	RawReasonInactiveModel  = "Inactive Focus Model"
)

// CategoryFromReason maps a classifier reason string to a frame category.
func CategoryFromReason(reason string) Category {
	switch {
	case reason == "" || reason == "-":
		return CategoryNone
	case reason == RawReasonPhone:
		return CategoryPhone
	case reason == RawReasonAbsent:
		return CategoryAbsent
	case reason == RawReasonFaceNotVisible:
		return CategoryFaceNotVisible
	case reason == RawReasonInactiveModel:
		return CategoryInactiveModel
	case strings.HasPrefix(strings.ToLower(reason), "likely distraction"):
		return CategoryLikelyDistracted
	default:
		return CategoryNone
	}
}

// FrameSample is one per-second classifier result.
type FrameSample struct {
	State     State     `json:"focus_state"`
	Category  Category  `json:"category"`
	Reason    string    `json:"reason"`
	Level     int       `json:"focus_level"`
	Timestamp time.Time `json:"timestamp"`
}

// Classification is the response of the frame classifier service.
type Classification struct {
	State           State
	Reason          string
	Level           int
	OverrideMessage string
}

// VerdictReason is the reason attached to a distracted window.
type VerdictReason string

const (
	VerdictNone           VerdictReason = ""
	VerdictPhone          VerdictReason = "Phone"
	VerdictAbsent         VerdictReason = "Absent"
	VerdictFaceNotVisible VerdictReason = "LikelyDistraction:FaceNotVisible"
	VerdictPosture        VerdictReason = "LikelyDistraction:Posture"
)

// WindowVerdict is one focus log entry.
type WindowVerdict struct {
	Index                    int           `json:"index"`
	Timestamp                time.Time     `json:"timestamp"`
	State                    State         `json:"focus_state"`
	Reason                   VerdictReason `json:"reason,omitempty"`
	Level                    int           `json:"focus_level"`
	FaceNotVisibleTransition bool          `json:"is_face_not_visible_transition"`
	AbsentMode               bool          `json:"absent_mode"` // latch state after this window
	Details                  []FrameSample `json:"details"`
}

// Focused reports whether the window resolved to Focused.
func (v WindowVerdict) Focused() bool {
	return v.State == StateFocused
}

// NudgeType selects how nudges are delivered.
type NudgeType string

const (
	NudgeText          NudgeType = "text"
	NudgeTextWithSound NudgeType = "text_with_sound"
)

// Valid reports whether t is a known nudge type.
func (t NudgeType) Valid() bool {
	return t == NudgeText || t == NudgeTextWithSound
}

// NudgeKind identifies which threshold produced a nudge.
type NudgeKind string

const (
	NudgePhoneDetected     NudgeKind = "phone_detected"
	NudgePhoneFinalWarning NudgeKind = "phone_final_warning"
	NudgeAbsentDetected    NudgeKind = "absent_detected"
	NudgeAbsentMinute      NudgeKind = "absent_minute"
	NudgeAbsentFinal       NudgeKind = "absent_final_warning"
	NudgeFaceNotVisible    NudgeKind = "face_not_visible"
	NudgePositive          NudgeKind = "positive"
	NudgeTerminated        NudgeKind = "terminated"
)

// NudgeEvent is a user-facing warning or encouragement.
type NudgeEvent struct {
	ID        string    `json:"id"`
	Kind      NudgeKind `json:"kind"`
	Message   string    `json:"message"`
	Positive  bool      `json:"positive"`
	Sound     bool      `json:"sound"`
	Timestamp time.Time `json:"timestamp"`
}

// TerminationEvent is emitted once when a session ends.
type TerminationEvent struct {
	Kind      EndKind   `json:"kind"`
	Reason    string    `json:"reason"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Interaction types recorded in the nudge interaction log.
const (
	InteractionShown             = "shown"
	InteractionShownPositive     = "shown_positive"
	InteractionDismissed         = "dismissed"
	InteractionDismissedPositive = "dismissed_positive"
	InteractionDisabled          = "disabled"
	InteractionEnabled           = "enabled"
	InteractionTypeChanged       = "type_changed"
)

// Interaction is one entry of the nudge interaction log.
type Interaction struct {
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	NudgeType NudgeType `json:"nudge_type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives nudge and termination events.
type Notifier interface {
	Nudge(NudgeEvent)
	Terminated(TerminationEvent)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Nudge(NudgeEvent)             {}
func (NopNotifier) Terminated(TerminationEvent) {}
