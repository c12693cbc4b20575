package prompt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/reservation_insight/backend/internal/ai"
	"github.com/reservation_insight/backend/internal/models"
)

// Separator joins the instruction template and the raw file text.
const Separator = ":\n\n"

const DefaultInstruction = "Summarise the description column in this csv file on the basis that you are outputting themes " +
	"from 'other' note types that would tell a customer service agent what recent activity there has been on this reservation. " +
	"Summarise it in 100 words based on a timeline style summary and list the key reference numbers such as ticket numbers " +
	"and damage ids, excluding telephone numbers, where they are contained in the original data. " +
	"Include the timeframe this happened in and look only at the last 3 months. Output this as JSON"

// Composer builds the completion input for one uploaded file.
type Composer struct {
	Instruction     string
	Model           string
	MaxOutputTokens int
}

// Template is the instruction followed by the schema documentation.
func (c Composer) Template() string {
	instruction := strings.TrimSpace(c.Instruction)
	if instruction == "" {
		instruction = DefaultInstruction
	}
	return instruction + "\n\n" + SchemaDoc()
}

// Compose embeds raw verbatim after the template. Nothing is truncated.
func (c Composer) Compose(raw string) string {
	return c.Template() + Separator + raw
}

func (c Composer) Request(raw string) ai.CompletionRequest {
	return ai.CompletionRequest{
		Model:           c.Model,
		Input:           c.Compose(raw),
		MaxOutputTokens: c.MaxOutputTokens,
	}
}

// WithInstruction returns a copy using instruction, or the current one when
// instruction is blank.
func (c Composer) WithInstruction(instruction string) Composer {
	if strings.TrimSpace(instruction) != "" {
		c.Instruction = instruction
	}
	return c
}

// Field describes one key of the expected JSON object.
type Field struct {
	Name        string
	Type        string
	Description string
}

// SchemaFields lists the ReservationInsight JSON keys in declaration order.
func SchemaFields() []Field {
	t := reflect.TypeOf(models.ReservationInsight{})
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, Field{
			Name:        name,
			Type:        f.Tag.Get("schema"),
			Description: f.Tag.Get("desc"),
		})
	}
	return fields
}

// SchemaDoc renders SchemaFields as prompt text.
func SchemaDoc() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. The object must have exactly these fields:\n")
	for _, f := range SchemaFields() {
		fmt.Fprintf(&b, "- %q (%s): %s\n", f.Name, f.Type, f.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
