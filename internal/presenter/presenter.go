package presenter

import (
	"fmt"
	"strings"

	"github.com/reservation_insight/backend/internal/models"
	"github.com/reservation_insight/backend/internal/session"
)

// EventColumns are the columns the event table shows, in order.
var EventColumns = []string{
	"Date",
	"Description",
	"User",
	"Supplier",
	"Supplier Contact",
	"Account Contact",
	"Event Type",
}

// Tone buckets a free-form sentiment label for styling.
func Tone(sentiment string) string {
	if sentiment == "" {
		return ""
	}
	s := strings.ToLower(sentiment)
	switch {
	case strings.Contains(s, "negative"):
		return "negative"
	case strings.Contains(s, "positive"):
		return "positive"
	case strings.Contains(s, "neutral"):
		return "neutral"
	default:
		return "other"
	}
}

func StatusLabel(st models.Status) string {
	switch st {
	case models.StatusReading:
		return "Reading file…"
	case models.StatusSending:
		return "Sending to model…"
	case models.StatusDone:
		return "Done"
	default:
		return ""
	}
}

type InsightCard struct {
	Sentiment       string
	Tone            string
	TicketCount     int
	TicketChips     []string
	Complaints      int
	Damages         int
	Summary         string
	KeyEvents       []string
	IsAutoExtension bool
	OpenDamageCase  string
}

func NewInsightCard(in *models.ReservationInsight) *InsightCard {
	if in == nil {
		return nil
	}
	chips := make([]string, 0, len(in.TicketIDs))
	for _, id := range in.TicketIDs {
		chips = append(chips, "#"+id.String())
	}
	return &InsightCard{
		Sentiment:       in.Sentiment,
		Tone:            Tone(in.Sentiment),
		TicketCount:     len(in.TicketIDs),
		TicketChips:     chips,
		Complaints:      in.Complaints,
		Damages:         in.Damages,
		Summary:         in.Summary,
		KeyEvents:       in.KeyEvents,
		IsAutoExtension: in.IsAutoExtension,
		OpenDamageCase:  string(in.OpenDamageCase),
	}
}

type EventTable struct {
	Columns []string
	Rows    [][]string
	Caption string
}

func (t EventTable) Empty() bool {
	return len(t.Rows) == 0
}

// NewEventTable lays rows out under EventColumns. Cells a row lacks are blank.
func NewEventTable(rows []models.RawEventRow) *EventTable {
	if rows == nil {
		return nil
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(EventColumns))
		for i, col := range EventColumns {
			cells[i] = row[col]
		}
		out = append(out, cells)
	}
	caption := fmt.Sprintf("Showing %d events", len(rows))
	if len(rows) == 1 {
		caption = "Showing 1 event"
	}
	return &EventTable{Columns: EventColumns, Rows: out, Caption: caption}
}

// View is everything the page template needs.
type View struct {
	FileName  string
	Status    string
	Busy      bool
	Error     string
	ErrorKind string
	Card      *InsightCard
	Table     *EventTable
}

func NewView(st session.State) View {
	v := View{
		FileName: st.FileName,
		Status:   StatusLabel(st.Status),
		Busy:     st.Busy(),
		Card:     NewInsightCard(st.Insight),
		Table:    NewEventTable(st.Rows),
	}
	if st.Error != nil {
		v.Error = st.Error.Message
		v.ErrorKind = string(st.Error.Kind)
	}
	return v
}
