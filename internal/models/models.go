package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// RawEventRow is one CSV line keyed by header column name.
type RawEventRow map[string]string

type Status string

const (
	StatusIdle    Status = "idle"
	StatusReading Status = "reading"
	StatusSending Status = "sending"
	StatusDone    Status = "done"
)

// ReservationInsight is the object the model is asked to return. The prompt's
// schema documentation is generated from the schema and desc tags below, so
// changing a field here changes what the model is told to produce.
type ReservationInsight struct {
	TicketIDs       []TicketID    `json:"ticketIds" schema:"array of strings or numbers" desc:"distinct ticket, damage and other reference identifiers found in the event text, excluding telephone numbers"`
	Complaints      int           `json:"complaints" schema:"integer" desc:"number of complaint events" validate:"gte=0"`
	Damages         int           `json:"damages" schema:"integer" desc:"number of damage case events" validate:"gte=0"`
	Sentiment       string        `json:"sentiment" schema:"string" desc:"overall tone of the recent activity: negative, positive, neutral or another short label"`
	Summary         string        `json:"summary" schema:"string" desc:"timeline style summary of recent activity in about 100 words, including the timeframe it happened in"`
	KeyEvents       []string      `json:"keyEvents" schema:"array of strings" desc:"short descriptions of milestone events in date order"`
	IsAutoExtension bool          `json:"isAutoExtension" schema:"boolean" desc:"true when the booking is being extended automatically"`
	OpenDamageCase  DamageCaseRef `json:"openDamageCase,omitempty" schema:"string or null" desc:"id of a damage case that has no later closing event, otherwise null"`
}

// TicketID is a reference the model reported, either as a JSON string or a
// JSON number. Numbers keep their original text and are written back as
// numbers.
type TicketID struct {
	Text    string
	Numeric bool
}

func StringTicketID(s string) TicketID {
	return TicketID{Text: s}
}

// NumericTicketID expects s to be a valid JSON number.
func NumericTicketID(s string) TicketID {
	return TicketID{Text: s, Numeric: true}
}

func (t TicketID) String() string {
	return t.Text
}

func (t TicketID) MarshalJSON() ([]byte, error) {
	if t.Numeric {
		return []byte(t.Text), nil
	}
	return json.Marshal(t.Text)
}

func (t *TicketID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty ticket id")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = StringTicketID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("ticket id must be a string or number, got %s", b)
		}
		*t = NumericTicketID(n.String())
		return nil
	}
}

// DamageCaseRef is empty when the model reports no open damage case. null,
// false, "" and 0 all decode to empty.
type DamageCaseRef string

func (d *DamageCaseRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "null", "false", `""`:
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DamageCaseRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("openDamageCase must be a string, number, null or false, got %s", b)
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*d = ""
		return nil
	}
	*d = DamageCaseRef(n.String())
	return nil
}

type Run struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	Generation uint64          `json:"generation"`
	FileName   string          `json:"file_name"`
	Status     string          `json:"status"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	RowCount   int             `json:"row_count"`
	Summary    json.RawMessage `json:"summary,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
