package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"khidmaBack/internal/events"
	"khidmaBack/internal/fsm"
	"khidmaBack/internal/i18n"
	"khidmaBack/internal/models"
	"khidmaBack/internal/notify"
)

const notifyTimeout = 30 * time.Second

type ContactStore interface {
	Contacts(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

// NotificationService delivers events to kafka, websocket clients, FCM devices
// and mailboxes. Every channel is optional and failures are only logged.
type NotificationService struct {
	Publisher events.Publisher
	Hub       Broadcaster
	Pusher    notify.Pusher
	Mailer    notify.Mailer
	Users     ContactStore
	Tokens    DeviceTokenStore
	Logger    Logger
	Metrics   MetricsRecorder
	// AppURL prefixes deep links placed in emails.
	AppURL string

	wg sync.WaitGroup
}

// recipient is one user addressed by a templated message.
type recipient struct {
	userID      int64
	template    string
	subjectArgs []interface{}
	bodyArgs    func(lang string) []interface{}
	link        string
}

type delivery struct {
	event      events.Event
	recipients []recipient
}

func (n *NotificationService) OrderCreated(o models.Order) {
	n.dispatch(delivery{
		event: events.Event{Type: events.TypeOrderCreated, OrderID: o.ID, ToStatus: o.Status, ActorID: o.BuyerID, Payload: o},
	})
}

func (n *NotificationService) OrderStatusChanged(o models.Order, from, to string, actorID int64) {
	o.Status = to
	d := delivery{
		event: events.Event{Type: events.TypeOrderStatus, OrderID: o.ID, FromStatus: from, ToStatus: to, ActorID: actorID, Payload: o},
	}
	link := n.orderLink(o.ID)
	title := func(string) []interface{} { return []interface{}{o.ServiceTitle} }
	both := func(tpl string) {
		d.recipients = append(d.recipients,
			recipient{userID: o.BuyerID, template: tpl, subjectArgs: []interface{}{o.ID}, bodyArgs: title, link: link},
			recipient{userID: o.SellerID, template: tpl, subjectArgs: []interface{}{o.ID}, bodyArgs: title, link: link})
	}

	switch to {
	case fsm.StatusInProgress:
		d.recipients = append(d.recipients,
			recipient{userID: o.BuyerID, template: "order_in_progress", subjectArgs: []interface{}{o.ID}, bodyArgs: title, link: link},
			recipient{userID: o.SellerID, template: "order_placed", subjectArgs: []interface{}{o.ID}, link: link,
				bodyArgs: func(lang string) []interface{} {
					return []interface{}{o.ServiceTitle, i18n.Money(lang, o.PriceCents, o.Currency)}
				}})
	case fsm.StatusDelivered:
		d.recipients = append(d.recipients,
			recipient{userID: o.BuyerID, template: "order_delivered", subjectArgs: []interface{}{o.ID}, bodyArgs: title, link: link},
			recipient{userID: o.SellerID})
	case fsm.StatusCompleted:
		both("order_completed")
	case fsm.StatusCancelled:
		both("order_cancelled")
	case fsm.StatusDisputed:
		both("order_disputed")
		d.event.Type = events.TypeDisputeOpened
	default:
		d.recipients = append(d.recipients, recipient{userID: o.BuyerID}, recipient{userID: o.SellerID})
	}
	n.dispatch(d)
}

func (n *NotificationService) DisputeResolved(o models.Order, resolution string) {
	body := func(lang string) []interface{} { return []interface{}{i18n.T(lang, "resolution."+resolution)} }
	link := n.orderLink(o.ID)
	n.dispatch(delivery{
		event: events.Event{Type: events.TypeDisputeResolved, OrderID: o.ID, ToStatus: o.Status,
			Payload: map[string]interface{}{"resolution": resolution, "order": o}},
		recipients: []recipient{
			{userID: o.BuyerID, template: "dispute_resolved", subjectArgs: []interface{}{o.ID}, bodyArgs: body, link: link},
			{userID: o.SellerID, template: "dispute_resolved", subjectArgs: []interface{}{o.ID}, bodyArgs: body, link: link},
		},
	})
}

func (n *NotificationService) PayoutSent(p models.Payout) {
	n.dispatch(delivery{
		event: events.Event{Type: events.TypePayoutProcessed, EntityID: p.ID, ToStatus: p.Status, Payload: p},
		recipients: []recipient{{
			userID:   p.SellerID,
			template: "payout_sent",
			bodyArgs: func(lang string) []interface{} {
				return []interface{}{i18n.Money(lang, p.NetCents, p.Currency)}
			},
		}},
	})
}

func (n *NotificationService) ServiceModerated(s models.Service, action string) {
	n.dispatch(delivery{
		event: events.Event{Type: events.TypeServiceModerated, EntityID: s.ID, ToStatus: s.Status,
			Payload: map[string]interface{}{"action": action, "service_id": s.ID, "status": s.Status, "reason": s.RejectionReason}},
		recipients: []recipient{{userID: s.SellerID}},
	})
}

func (n *NotificationService) ReviewCreated(rv models.Review) {
	n.dispatch(delivery{
		event:      events.Event{Type: events.TypeReviewCreated, OrderID: rv.OrderID, EntityID: rv.ID, ActorID: rv.BuyerID, Payload: rv},
		recipients: []recipient{{userID: rv.SellerID}},
	})
}

// Wait blocks until every in-flight delivery has finished.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) dispatch(d delivery) {
	if d.event.OccurredAt.IsZero() {
		d.event.OccurredAt = time.Now().UTC()
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.errorf("notify %s: panic: %v", d.event.Type, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		n.deliver(ctx, d)
	}()
}

func (n *NotificationService) deliver(ctx context.Context, d delivery) {
	if n.Publisher != nil {
		if err := n.Publisher.Publish(ctx, d.event); err != nil {
			n.failed("kafka", "publish %s: %v", d.event.Type, err)
		}
	}

	if n.Hub != nil {
		for _, r := range d.recipients {
			n.Hub.Push(r.userID, d.event)
		}
		n.Hub.BroadcastAdmins(d.event)
	}

	var ids []int64
	for _, r := range d.recipients {
		if r.template != "" {
			ids = append(ids, r.userID)
		}
	}
	if len(ids) == 0 || n.Users == nil {
		return
	}
	contacts, err := n.Users.Contacts(ctx, ids)
	if err != nil {
		n.errorf("notify %s: load contacts: %v", d.event.Type, err)
		return
	}
	for _, r := range d.recipients {
		if r.template == "" {
			continue
		}
		user, ok := contacts[r.userID]
		if !ok {
			continue
		}
		lang := user.Locale
		if lang != i18n.English {
			lang = i18n.Arabic
		}
		subject := i18n.T(lang, "mail."+r.template+".subject", r.subjectArgs...)
		var args []interface{}
		if r.bodyArgs != nil {
			args = r.bodyArgs(lang)
		}
		body := i18n.T(lang, "mail."+r.template+".body", args...)

		n.push(ctx, user.ID, subject, body, d.event)
		n.mail(ctx, user, lang, subject, body, r.link)
	}
}

func (n *NotificationService) push(ctx context.Context, userID int64, title, body string, ev events.Event) {
	if n.Pusher == nil || n.Tokens == nil {
		return
	}
	tokens, err := n.Tokens.TokensByUser(ctx, userID)
	if err != nil {
		n.failed("fcm", "load device tokens for user %d: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	data := map[string]string{"type": ev.Type}
	if ev.OrderID != 0 {
		data["order_id"] = fmt.Sprint(ev.OrderID)
	}
	stale, err := n.Pusher.Push(ctx, tokens, title, body, data)
	if err != nil {
		n.failed("fcm", "push to user %d: %v", userID, err)
	}
	if len(stale) > 0 {
		if err := n.Tokens.DeleteTokens(ctx, stale); err != nil {
			n.errorf("delete %d stale device tokens: %v", len(stale), err)
		}
	}
}

func (n *NotificationService) mail(ctx context.Context, user models.User, lang, subject, body, link string) {
	if n.Mailer == nil || user.Email == "" {
		return
	}
	html, err := notify.RenderHTML(lang, subject, body, link)
	if err != nil {
		n.failed("mail", "render mail for user %d: %v", user.ID, err)
		return
	}
	if err := n.Mailer.Send(ctx, user.Email, subject, html); err != nil {
		n.failed("mail", "send mail to user %d: %v", user.ID, err)
	}
}

func (n *NotificationService) orderLink(orderID int64) string {
	if n.AppURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/orders/%d", n.AppURL, orderID)
}

func (n *NotificationService) failed(channel, format string, args ...interface{}) {
	metricsOrNoop(n.Metrics).NotifyFailed(channel)
	n.errorf(format, args...)
}

func (n *NotificationService) errorf(format string, args ...interface{}) {
	if n.Logger != nil {
		n.Logger.Errorf(format, args...)
	}
}
