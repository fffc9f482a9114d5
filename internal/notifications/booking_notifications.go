package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/9ssi7/exponent"

	"riopreto/internal/store"
)

type BookingEvent string

const (
	BookingIntake    BookingEvent = "INTAKE"
	BookingConfirmed BookingEvent = "CONFIRMED"
	BookingConflict  BookingEvent = "CONFLICT"
)

// SendBookingAlert pushes a booking event to every registered operator
// phone. The resort has one shared operator channel, not per-user inboxes.
func SendBookingAlert(ctx context.Context, push PushSender, tokens []string, event BookingEvent, b *store.Booking) error {
	if len(tokens) == 0 {
		return errors.New("no push tokens registered")
	}

	var title, body string
	switch event {
	case BookingIntake:
		title = "Nova pré-reserva"
		body = fmt.Sprintf("Chalé %d: %s, %s a %s", b.ChaletID, b.GuestName, b.CheckinDate, b.CheckoutDate)
	case BookingConfirmed:
		title = "Reserva confirmada"
		body = fmt.Sprintf("Chalé %d: %s", b.ChaletID, b.GuestName)
	case BookingConflict:
		title = "Conflito de reservas"
		body = fmt.Sprintf("Chalé %d tem reservas sobrepostas, verifique o mapa", b.ChaletID)
	default:
		title = "Atualização de reserva"
		body = fmt.Sprintf("Chalé %d: %s", b.ChaletID, b.GuestName)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":      "booking",
				"event":     string(event),
				"bookingId": fmt.Sprintf("%d", b.ID),
				"screen":    "booking-map",
			},
		})
	}

	_, err := push.Publish(ctx, msgs)
	return err
}
