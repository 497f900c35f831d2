package domain

import (
	"time"

	"github.com/aarondl/null/v8"
)

// HistoryAction names the mutation recorded by a history entry.
type HistoryAction string

const (
	ActionCreateMEP         HistoryAction = "CREATE_MEP"
	ActionUpdateMEPStatus   HistoryAction = "UPDATE_MEP_STATUS"
	ActionUpdateMEPFeedback HistoryAction = "UPDATE_MEP_FEEDBACK"
	ActionCreateVR          HistoryAction = "CREATE_VR"
	ActionUpdateVRStatus    HistoryAction = "UPDATE_VR_STATUS"
	ActionUpdateVRDriver    HistoryAction = "UPDATE_VR_DRIVER"
	ActionUpdateVRFeedback  HistoryAction = "UPDATE_VR_FEEDBACK"
	ActionChatMessage       HistoryAction = "CHAT_MESSAGE"
)

// HistoryEntry is an immutable audit trail entry.
type HistoryEntry struct {
	ID           int64
	TicketNumber string
	ActorEmail   string
	Action       HistoryAction
	Comment      null.String
	BeforeState  map[string]any
	AfterState   map[string]any
	CreatedAt    time.Time
}
