package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/iliyamo/event-ticketing/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// QRAttachmentName is the content id of the QR image in confirmation emails.
const QRAttachmentName = "qr-code.png"

// Ticket pairs a registration with its rendered QR image.
type Ticket struct {
	Reg *model.Registration
	PNG []byte
}

// Flyer is a client-rendered flyer image forwarded to the operator.
type Flyer struct {
	Name string
	Data []byte
}

// Notifier renders ticket emails and hands them to a Sender.  A nil
// sender disables every method; they return nil without doing anything.
type Notifier struct {
	sender   Sender
	event    string
	operator string
}

// NewNotifier returns a notifier for event.  Group tickets and flyers go to
// operator.  Pass a nil sender when mail credentials are absent.
func NewNotifier(sender Sender, event, operator string) *Notifier {
	return &Notifier{sender: sender, event: event, operator: operator}
}

// Enabled reports whether messages are actually sent.
func (n *Notifier) Enabled() bool { return n != nil && n.sender != nil }

// SendConfirmation mails a single-guest ticket to the guest's own address
// with the QR image embedded inline.
func (n *Notifier) SendConfirmation(ctx context.Context, t Ticket) error {
	if !n.Enabled() {
		return nil
	}
	if t.Reg.Email == "" {
		return fmt.Errorf("registration %s has no email", t.Reg.ID)
	}
	html, err := render("confirmation.html", map[string]any{
		"Event":  n.event,
		"Reg":    t.Reg,
		"QRName": QRAttachmentName,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:          t.Reg.Email,
		Subject:     fmt.Sprintf("Confirmación de Registro - %s", n.event),
		HTML:        html,
		Attachments: []Attachment{{Name: QRAttachmentName, Data: t.PNG, Inline: true}},
	})
}

// SendGroupTickets mails every guest ticket of a purchase in one message to
// the operator address, one inline QR per guest.
func (n *Notifier) SendGroupTickets(ctx context.Context, p *model.Purchase, tickets []Ticket) error {
	if !n.Enabled() {
		return nil
	}
	type entry struct {
		Reg    *model.Registration
		QRName string
	}
	entries := make([]entry, 0, len(tickets))
	atts := make([]Attachment, 0, len(tickets))
	for _, t := range tickets {
		name := fmt.Sprintf("qr-%d.png", t.Reg.GuestNumber)
		entries = append(entries, entry{Reg: t.Reg, QRName: name})
		atts = append(atts, Attachment{Name: name, Data: t.PNG, Inline: true})
	}
	html, err := render("group_tickets.html", map[string]any{
		"Event":    n.event,
		"Purchase": p,
		"Tickets":  entries,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:          n.operator,
		Subject:     fmt.Sprintf("Entradas %s - %s (%d)", n.event, p.BuyerName, p.TotalGuests),
		HTML:        html,
		Attachments: atts,
	})
}

// ForwardFlyers sends uploaded flyers to the operator as attachments.
func (n *Notifier) ForwardFlyers(ctx context.Context, purchaseID string, flyers []Flyer) error {
	if !n.Enabled() || len(flyers) == 0 {
		return nil
	}
	names := make([]string, 0, len(flyers))
	atts := make([]Attachment, 0, len(flyers))
	for _, f := range flyers {
		names = append(names, f.Name)
		atts = append(atts, Attachment{Name: f.Name, Data: f.Data})
	}
	html, err := render("flyers.html", map[string]any{
		"Event":      n.event,
		"PurchaseID": purchaseID,
		"Names":      names,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:          n.operator,
		Subject:     fmt.Sprintf("Flyers %s", n.event),
		HTML:        html,
		Attachments: atts,
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
