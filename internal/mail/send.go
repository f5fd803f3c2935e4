package mail

import (
	"context"
	"fmt"

	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
)

const (
	NewSubscriber     = "new_subscriber.gohtml"
	EventRegistration = "event_registration.gohtml"
	OrderReceived     = "order_received.gohtml"
)

var templateSubjects = map[string]string{
	NewSubscriber:     "Вы подписаны на новости SoftKom",
	EventRegistration: "Регистрация на мероприятие подтверждена",
	OrderReceived:     "Ваш заказ принят",
}

// SendNewSubscriber sends a welcome email to a new subscriber.
func (m *Mailer) SendNewSubscriber(ctx context.Context, rep dependency.Repository, to string) error {
	ser, err := m.buildSendEmailRequest(to, NewSubscriber, struct{}{})
	if err != nil {
		return err
	}
	return m.sendWithInsert(ctx, rep, ser)
}

// SendEventRegistration confirms an event registration.
func (m *Mailer) SendEventRegistration(ctx context.Context, rep dependency.Repository, to, eventTitle string) error {
	if eventTitle == "" {
		return fmt.Errorf("empty event title")
	}
	ser, err := m.buildSendEmailRequest(to, EventRegistration, struct {
		EventTitle string
	}{EventTitle: eventTitle})
	if err != nil {
		return err
	}
	return m.sendWithInsert(ctx, rep, ser)
}

// SendOrderReceived confirms a ready-solution order and repeats the
// reference the visitor should keep.
func (m *Mailer) SendOrderReceived(ctx context.Context, rep dependency.Repository, to, solutionTitle, reference string) error {
	if reference == "" {
		return fmt.Errorf("empty order reference")
	}
	ser, err := m.buildSendEmailRequest(to, OrderReceived, struct {
		SolutionTitle string
		Reference     string
	}{SolutionTitle: solutionTitle, Reference: reference})
	if err != nil {
		return err
	}
	return m.sendWithInsert(ctx, rep, ser)
}

// SendNewsletter delivers a one-off campaign email. The body comes from the
// back office ready to send, so no template is involved.
func (m *Mailer) SendNewsletter(ctx context.Context, rep dependency.Repository, to, subject, html string) error {
	if subject == "" || html == "" {
		return fmt.Errorf("empty newsletter subject or body")
	}
	replyTo := m.c.ReplyTo
	if replyTo == "" {
		replyTo = m.c.FromEmail
	}
	ser := &entity.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.c.FromName, m.c.FromEmail),
		To:      to,
		Html:    html,
		Subject: subject,
		ReplyTo: replyTo,
	}
	return m.sendWithInsert(ctx, rep, ser)
}
