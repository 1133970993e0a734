package email

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers a single outbound message. Callers fire it from a
// goroutine and log failures; a failed mail never reverses a completed
// state transition.
type Sender interface {
	Send(to, subject, plain, html string) error
}

// SendGrid implements Sender on the SendGrid v3 mail API.
type SendGrid struct {
	apiKey string
	from   string
}

func NewSendGrid(apiKey, from string) *SendGrid {
	return &SendGrid{apiKey: apiKey, from: from}
}

func (s *SendGrid) Send(to, subject, plain, html string) error {
	if s.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}
	if html == "" {
		html = fmt.Sprintf("<pre>%s</pre>", plain)
	}

	message := mail.NewSingleEmail(
		mail.NewEmail("Node Shop", s.from),
		subject,
		mail.NewEmail("", to),
		plain,
		html,
	)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", response.StatusCode, response.Body)
	}

	log.Printf("[mail] sent status=%d to=%s subject=%q", response.StatusCode, to, subject)
	return nil
}
