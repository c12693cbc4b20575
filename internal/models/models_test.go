package models

import (
	"encoding/json"
	"testing"
)

func TestTicketIDsKeepJSONKind(t *testing.T) {
	in := `[4567,"T-1","4567",12.50]`
	var ids []TicketID
	if err := json.Unmarshal([]byte(in), &ids); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ids[0] != NumericTicketID("4567") || ids[1] != StringTicketID("T-1") || ids[2] != StringTicketID("4567") {
		t.Fatalf("unexpected ids %+v", ids)
	}
	out, err := json.Marshal(ids)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("expected %s, got %s", in, out)
	}
}

func TestTicketIDRejectsOtherTypes(t *testing.T) {
	for _, in := range []string{`true`, `{}`, `[1]`} {
		var id TicketID
		if err := json.Unmarshal([]byte(in), &id); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}

func TestDamageCaseRefEmptyValues(t *testing.T) {
	cases := []struct {
		in   string
		want DamageCaseRef
	}{
		{`null`, ""},
		{`false`, ""},
		{`""`, ""},
		{`0`, ""},
		{`0.0`, ""},
		{`"DMG-9"`, "DMG-9"},
		{`812`, "812"},
	}
	for _, tc := range cases {
		var d DamageCaseRef
		if err := json.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if d != tc.want {
			t.Errorf("%s decoded to %q, want %q", tc.in, d, tc.want)
		}
	}
	var d DamageCaseRef
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatalf("expected error for true")
	}
}
