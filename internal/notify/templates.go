package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Skotchmaster/fashion_shop/internal/models"
)

var (
	orderTmpl = template.Must(template.New("order").Parse(`<h2>Thank you for your order, {{.Order.ShippingAddress.FullName}}!</h2>
<p>Order <strong>{{.Order.ID}}</strong> is {{.Order.Status}}.</p>
<table>
{{range .Order.OrderItems}}<tr><td>{{.Name}} ({{.Size}})</td><td>x{{.Quantity}}</td><td>{{.Price.StringFixed 2}}</td></tr>
{{end}}</table>
<p>Items: {{.Order.ItemsPrice.StringFixed 2}}<br>Shipping: {{.Order.ShippingPrice.StringFixed 2}}<br>Tax: {{.Order.TaxPrice.StringFixed 2}}<br><strong>Total: {{.Order.TotalPrice.StringFixed 2}}</strong></p>
<p>Shipping to {{.Order.ShippingAddress.Address}}, {{.Order.ShippingAddress.City}} {{.Order.ShippingAddress.PostalCode}}, {{.Order.ShippingAddress.Country}}</p>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`<h2>Welcome to the list!</h2>
<p>You are subscribed with {{.Email}}. Expect new arrivals and styling notes from us.</p>`))

	contactTmpl = template.Must(template.New("contact").Parse(`<h3>New contact form message</h3>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>`))
)

func OrderConfirmation(to string, o *models.Order) (Message, error) {
	html, err := render(orderTmpl, map[string]any{"Order": o})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Order confirmation #%s", o.ID),
		HTML:    html,
	}, nil
}

func Welcome(to string) (Message, error) {
	html, err := render(welcomeTmpl, map[string]any{"Email": to})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Welcome to our newsletter", HTML: html}, nil
}

func ContactForward(to string, m *models.ContactMessage) (Message, error) {
	html, err := render(contactTmpl, m)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		ReplyTo: m.Email,
		Subject: "Contact form: " + m.Subject,
		HTML:    html,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", m.Name, m.Email, m.Message),
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
