package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reservation_insight/backend/internal/models"
	"github.com/reservation_insight/backend/internal/utils"
)

// MockClient answers without a network call. The insight is derived from a
// hash of the input so the same file always produces the same answer.
type MockClient struct {
	ModelVersion string
}

func (m MockClient) Send(ctx context.Context, req CompletionRequest) (Envelope, error) {
	if err := ctx.Err(); err != nil {
		return Envelope{}, err
	}
	h := utils.HashStringToUint64(req.Input)

	sentiments := []string{"negative", "neutral", "positive"}
	insight := models.ReservationInsight{
		TicketIDs:       []models.TicketID{models.NumericTicketID(fmt.Sprintf("%d", 100000+h%900000))},
		Complaints:      int(h % 3),
		Damages:         int((h / 3) % 2),
		Sentiment:       sentiments[int(h/7)%len(sentiments)],
		Summary:         fmt.Sprintf("Mock summary generated by %s for an export of %d bytes.", m.ModelVersion, len(req.Input)),
		KeyEvents:       []string{"Booking requested", "Supplier accepted"},
		IsAutoExtension: h%2 == 0,
	}
	if insight.Damages > 0 {
		insight.OpenDamageCase = models.DamageCaseRef(fmt.Sprintf("DMG-%04d", h%10000))
	}
	text, err := json.Marshal(insight)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		ID:     fmt.Sprintf("resp_mock_%x", h),
		Status: "completed",
		Output: []OutputItem{
			&Message{
				ID:      fmt.Sprintf("msg_mock_%x", h),
				Role:    "assistant",
				Content: []ContentItem{&OutputText{Text: string(text)}},
			},
		},
	}, nil
}
