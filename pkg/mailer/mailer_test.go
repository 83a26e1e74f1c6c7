package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	raw, err := Render("recepcion@hotel.co", &Message{
		To:      "ana@correo.co",
		Subject: "Comprobante #000007",
		Text:    "Gracias por su visita",
		Attachments: []Attachment{
			{FileName: "comprobante-000007.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")},
		},
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "ana@correo.co")
	assert.Contains(t, s, "Comprobante #000007")
	assert.Contains(t, s, `filename="comprobante-000007.pdf"`)

	_, err = Render("recepcion@hotel.co", &Message{Subject: "sin destinatario"})
	assert.Error(t, err)
}

func TestNewSMTPMailer_DefaultFrom(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.hotel.co", Port: 587, Username: "bot@hotel.co"})
	assert.Equal(t, "bot@hotel.co", m.cfg.From)
	assert.Equal(t, "smtp.hotel.co:587", m.addr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, &Message{To: "a@b.co"}), context.Canceled)
}

func TestMockSender(t *testing.T) {
	s := &MockSender{}
	require.NoError(t, s.Send(context.Background(), &Message{To: "a@b.co"}))
	assert.Len(t, s.Sent, 1)
}
