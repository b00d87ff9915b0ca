package notify

import (
	"context"
	"testing"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderConfirmation(t *testing.T) {
	t.Parallel()

	o := &models.Order{
		ID:              uuid.New(),
		Status:          domain.StatusPending,
		ShippingAddress: domain.Address{FullName: "Asha <b>Rao</b>", City: "Pune"},
		OrderItems: []models.OrderItem{
			{Name: "Linen Kurta", Size: domain.SizeM, Quantity: 2, Price: decimal.NewFromInt(89)},
		},
		ItemsPrice:    decimal.NewFromInt(178),
		ShippingPrice: decimal.NewFromInt(25),
		TaxPrice:      decimal.RequireFromString("17.8"),
		TotalPrice:    decimal.RequireFromString("220.8"),
	}

	m, err := OrderConfirmation("asha@example.com", o)
	require.NoError(t, err)
	assert.Equal(t, []string{"asha@example.com"}, m.To)
	assert.Contains(t, m.Subject, o.ID.String())
	assert.Contains(t, m.HTML, "Linen Kurta (M)")
	assert.Contains(t, m.HTML, "220.80")
	assert.Contains(t, m.HTML, "Asha &lt;b&gt;Rao&lt;/b&gt;")
}

func TestContactForward(t *testing.T) {
	t.Parallel()

	m, err := ContactForward("shop@example.com", &models.ContactMessage{
		Name: "Ravi", Email: "ravi@example.com", Subject: "Sizing", Message: "Do you stock XXL?",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", m.ReplyTo)
	assert.Equal(t, "Contact form: Sizing", m.Subject)
	assert.Contains(t, m.Text, "Do you stock XXL?")
}

func TestWelcome(t *testing.T) {
	t.Parallel()

	m, err := Welcome("new@example.com")
	require.NoError(t, err)
	assert.Contains(t, m.HTML, "new@example.com")
}

func TestSMTPMailer_Build(t *testing.T) {
	t.Parallel()

	s := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "shop@example.com"})
	msg := s.build(Message{To: []string{"a@example.com"}, ReplyTo: "b@example.com", Subject: "Hi", HTML: "<p>x</p>"})

	assert.Equal(t, []string{"shop@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"b@example.com"}, msg.GetHeader("Reply-To"))

	assert.Error(t, s.Send(context.Background(), Message{Subject: "none"}))
}
