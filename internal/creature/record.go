package creature

import (
	"time"

	"github.com/google/uuid"
)

// Response tells how a wake cycle ended.
type Response string

const (
	ResponseDismiss         Response = "dismiss"
	ResponseImplicitDismiss Response = "implicit_dismiss"
	ResponseNone            Response = "no_response"
)

// WakeUpRecord is an immutable log entry, one per finished wake cycle.
type WakeUpRecord struct {
	ID             uuid.UUID  `json:"id"`
	AlarmID        uuid.UUID  `json:"alarm_id"`
	CreatedAt      time.Time  `json:"created_at"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	DismissedAt    *time.Time `json:"dismissed_at,omitempty"`
	SnoozeCount    int        `json:"snooze_count"`
	Result         Result     `json:"result"`
	Response       Response   `json:"response"`
	HPDelta        int        `json:"hp_delta"`
	HappinessDelta int        `json:"happiness_delta"`
}

// NewRecord logs an answered wake cycle.
func NewRecord(alarmID uuid.UUID, scheduled, dismissed time.Time, snoozeCount int, resp Response, ev Evaluation) *WakeUpRecord {
	return &WakeUpRecord{
		ID:             uuid.New(),
		AlarmID:        alarmID,
		CreatedAt:      dismissed,
		ScheduledAt:    scheduled,
		DismissedAt:    &dismissed,
		SnoozeCount:    snoozeCount,
		Result:         ev.Result,
		Response:       resp,
		HPDelta:        ev.HPDelta,
		HappinessDelta: ev.HappinessDelta,
	}
}

// NewMissedRecord logs a cycle that never got an answer.
func NewMissedRecord(alarmID uuid.UUID, scheduled, now time.Time, snoozeCount int) *WakeUpRecord {
	hp, happiness := MissedAlarm()
	return &WakeUpRecord{
		ID:             uuid.New(),
		AlarmID:        alarmID,
		CreatedAt:      now,
		ScheduledAt:    scheduled,
		SnoozeCount:    snoozeCount,
		Result:         ResultMissed,
		Response:       ResponseNone,
		HPDelta:        hp,
		HappinessDelta: happiness,
	}
}
