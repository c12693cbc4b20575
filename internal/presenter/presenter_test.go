package presenter

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/reservation_insight/backend/internal/errs"
	"github.com/reservation_insight/backend/internal/models"
	"github.com/reservation_insight/backend/internal/session"
)

func render(w io.Writer, v View) error {
	t, err := Templates()
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, PageTemplate, v)
}

func TestTone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"Negative", "negative"},
		{"mostly POSITIVE", "positive"},
		{"neutral", "neutral"},
		{"mixed", "other"},
		{"slightly negative", "negative"},
	}
	for _, tc := range cases {
		if got := Tone(tc.in); got != tc.want {
			t.Errorf("Tone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusLabel(models.StatusReading) != "Reading file…" ||
		StatusLabel(models.StatusSending) != "Sending to model…" ||
		StatusLabel(models.StatusDone) != "Done" ||
		StatusLabel(models.StatusIdle) != "" {
		t.Fatalf("unexpected status labels")
	}
}

func TestEventTableFixedColumns(t *testing.T) {
	table := NewEventTable([]models.RawEventRow{
		{"Date": "10-07-2023 14:57", "Description": "By Hamida Khan", "Extra": "ignored"},
	})
	if table.Caption != "Showing 1 event" {
		t.Fatalf("unexpected caption %q", table.Caption)
	}
	row := table.Rows[0]
	if len(row) != len(EventColumns) || row[0] != "10-07-2023 14:57" || row[1] != "By Hamida Khan" || row[6] != "" {
		t.Fatalf("unexpected row %+v", row)
	}
	if NewEventTable(nil) != nil {
		t.Fatalf("expected no table without rows")
	}
	if !NewEventTable([]models.RawEventRow{}).Empty() {
		t.Fatalf("expected empty table")
	}
}

func TestInsightCard(t *testing.T) {
	card := NewInsightCard(&models.ReservationInsight{
		TicketIDs:       []models.TicketID{models.NumericTicketID("1"), models.StringTicketID("22")},
		Complaints:      3,
		Sentiment:       "Negative",
		IsAutoExtension: true,
		OpenDamageCase:  "D-9",
	})
	if card.TicketCount != 2 || card.TicketChips[1] != "#22" || card.Tone != "negative" || card.OpenDamageCase != "D-9" {
		t.Fatalf("unexpected card %+v", card)
	}
	if NewInsightCard(nil) != nil {
		t.Fatalf("expected nil card")
	}
}

func TestRenderPage(t *testing.T) {
	sess := session.New("s1")
	ticket, _ := sess.Begin(context.Background(), "events.csv")
	ticket.PublishRows([]string{"Date", "Description"}, []models.RawEventRow{{"Date": "d1", "Description": "<b>x</b>"}, {"Date": "d2"}})
	ticket.Complete(models.ReservationInsight{Summary: "all good", Sentiment: "positive", TicketIDs: []models.TicketID{models.NumericTicketID("7")}})

	var buf bytes.Buffer
	if err := render(&buf, NewView(sess.Snapshot())); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Showing 2 events", "all good", "tone-positive", "#7", "&lt;b&gt;x&lt;/b&gt;", "Done"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, `http-equiv="refresh"`) {
		t.Errorf("finished page should not auto-refresh")
	}
}

func TestRenderBusyAndError(t *testing.T) {
	sess := session.New("s1")
	sess.Begin(context.Background(), "events.csv")
	var buf bytes.Buffer
	if err := render(&buf, NewView(sess.Snapshot())); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `http-equiv="refresh"`) || !strings.Contains(buf.String(), "Reading file…") {
		t.Fatalf("busy page should refresh and show status")
	}

	sess.Reject(errs.New(errs.KindNoFileSelected, "Please choose a file."))
	buf.Reset()
	if err := render(&buf, NewView(sess.Snapshot())); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Please choose a file.") || !strings.Contains(buf.String(), "NO_FILE_SELECTED") {
		t.Fatalf("expected error on page, got %s", buf.String())
	}
}

func TestRenderNoEvents(t *testing.T) {
	var buf bytes.Buffer
	v := View{Table: NewEventTable([]models.RawEventRow{})}
	if err := render(&buf, v); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No events to display.") {
		t.Fatalf("expected empty message")
	}
}
