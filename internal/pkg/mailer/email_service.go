package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

// KitchenOrder is the printable form of a placed order.
type KitchenOrder struct {
	OrderID  string
	Mode     string
	Customer string
	Phone    string
	Address  string
	Lines    []string
	Total    string
}

type IEmailService interface {
	SendKitchenOrder(toEmail string, order KitchenOrder) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendKitchenOrder(toEmail string, order KitchenOrder) error {
	m := buildKitchenMessage(s.senderEmail, s.senderName, toEmail, order)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send kitchen order %s to %s: %w", order.OrderID, toEmail, err)
	}
	return nil
}

func buildKitchenMessage(from, fromName, to string, order KitchenOrder) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New %s order for %s (%s)", order.Mode, order.Customer, order.Total))

	var items strings.Builder
	for _, line := range order.Lines {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(line))
	}

	address := ""
	if order.Address != "" {
		address = fmt.Sprintf("<p><b>Address:</b> %s</p>", html.EscapeString(order.Address))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Order %s</h2>
			<p><b>%s</b> for %s, phone %s</p>
			%s
			<ul>%s</ul>
			<h3>Total: %s</h3>
		</div>
	`,
		html.EscapeString(order.OrderID),
		html.EscapeString(strings.ToUpper(order.Mode)),
		html.EscapeString(order.Customer),
		html.EscapeString(order.Phone),
		address,
		items.String(),
		html.EscapeString(order.Total),
	)
	m.SetBody("text/html", body)
	return m
}
