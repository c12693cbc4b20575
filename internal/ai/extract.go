package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reservation_insight/backend/internal/errs"
	"github.com/reservation_insight/backend/internal/models"
)

var insightValidator = validator.New()

// ExtractInsight pulls the first output_text of the first message out of the
// envelope and decodes it. A missing message or output_text is
// ExtractionFailed; text that is not a valid insight object is
// MalformedInsight. No partial insight is ever returned.
func ExtractInsight(env Envelope) (models.ReservationInsight, error) {
	text, err := OutputTextOf(env)
	if err != nil {
		return models.ReservationInsight{}, err
	}
	return DecodeInsight(text)
}

// OutputTextOf returns the text of the first output_text item of the first
// message item.
func OutputTextOf(env Envelope) (string, error) {
	var msg *Message
	for _, item := range env.Output {
		if m, ok := item.(*Message); ok {
			msg = m
			break
		}
	}
	if msg == nil {
		return "", errs.New(errs.KindExtractionFailed, fmt.Sprintf("response has no message item (%d output items)", len(env.Output)))
	}
	for _, c := range msg.Content {
		if t, ok := c.(*OutputText); ok {
			return t.Text, nil
		}
	}
	types := make([]string, 0, len(msg.Content))
	for _, c := range msg.Content {
		types = append(types, c.contentType())
	}
	return "", errs.New(errs.KindExtractionFailed, fmt.Sprintf("message has no output_text content (content types: %s)", strings.Join(types, ", ")))
}

// DecodeInsight parses model output text as a ReservationInsight.
func DecodeInsight(text string) (models.ReservationInsight, error) {
	body := bytes.TrimSpace([]byte(stripCodeFence(text)))
	if len(body) == 0 || body[0] != '{' {
		return models.ReservationInsight{}, errs.New(errs.KindMalformedInsight, "model output is not a JSON object")
	}

	var insight models.ReservationInsight
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&insight); err != nil {
		return models.ReservationInsight{}, errs.Wrap(errs.KindMalformedInsight, "model output is not valid insight JSON", err)
	}
	if dec.More() {
		return models.ReservationInsight{}, errs.New(errs.KindMalformedInsight, "model output has trailing data after the JSON object")
	}
	if err := insightValidator.Struct(insight); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return models.ReservationInsight{}, errs.Wrap(errs.KindMalformedInsight, fmt.Sprintf("invalid field %s", verrs[0].Field()), err)
		}
		return models.ReservationInsight{}, errs.Wrap(errs.KindMalformedInsight, "invalid insight", err)
	}
	return insight, nil
}

// stripCodeFence removes one surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return text
	}
	t = strings.TrimSuffix(t[3:], "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && !strings.ContainsAny(t[:nl], "{[") {
		t = t[nl+1:]
	}
	return t
}
