package mail

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

type sent struct {
	from string
	to   []string
	raw  string
}

func capturingSender(out *[]sent) func(m *gomail.Message) error {
	return func(m *gomail.Message) error {
		return gomail.Send(gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
			var buf bytes.Buffer
			msg.WriteTo(&buf)
			*out = append(*out, sent{from: from, to: to, raw: buf.String()})
			return nil
		}), m)
	}
}

func testLead() *entity.Lead {
	timeline := "0-3 months"
	msg := "<script>alert(1)</script>"
	return &entity.Lead{
		ID:         "lead-1",
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane@example.com",
		Phone:      "6045551234",
		BuyerType:  entity.BuyerInvestor,
		LeadSource: entity.SourceYouTube,
		Timeline:   &timeline,
		Message:    &msg,
	}
}

func TestSendLeadConfirmation(t *testing.T) {
	var out []sent
	s := NewEmailSender("smtp.local", 587, "u", "p", "hello@presale.example")
	s.ProjectName = "Harbour Towers"
	s.send = capturingSender(&out)

	require.NoError(t, s.SendLeadConfirmation(testLead()))

	require.Len(t, out, 1)
	assert.Equal(t, "hello@presale.example", out[0].from)
	assert.Equal(t, []string{"jane@example.com"}, out[0].to)
	assert.Contains(t, out[0].raw, "Harbour Towers")
	assert.Contains(t, out[0].raw, "Jane")
}

func TestSendOperatorAlertEscapesMessage(t *testing.T) {
	var out []sent
	s := NewEmailSender("smtp.local", 587, "u", "p", "hello@presale.example")
	s.OperatorAddr = "sales@presale.example"
	s.send = capturingSender(&out)

	require.NoError(t, s.SendOperatorAlert(testLead()))

	require.Len(t, out, 1)
	assert.Equal(t, []string{"sales@presale.example"}, out[0].to)
	assert.NotContains(t, out[0].raw, "<script>")
}

func TestSendOperatorAlertWithoutAddressIsNoop(t *testing.T) {
	var out []sent
	s := NewEmailSender("smtp.local", 587, "u", "p", "hello@presale.example")
	s.send = capturingSender(&out)

	require.NoError(t, s.SendOperatorAlert(testLead()))
	assert.Empty(t, out)
}
