package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khidmaBack/internal/events"
	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingHub struct {
	mu     sync.Mutex
	users  []int64
	admins int
}

func (h *recordingHub) Push(userID int64, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users = append(h.users, userID)
}

func (h *recordingHub) BroadcastAdmins(interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.admins++
}

type sentMail struct {
	to, subject, html string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, html})
	return nil
}

type stalePusher struct {
	mu     sync.Mutex
	titles []string
}

func (p *stalePusher) Push(_ context.Context, tokens []string, title, _ string, _ map[string]string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, title)
	var stale []string
	for _, t := range tokens {
		if strings.HasPrefix(t, "stale") {
			stale = append(stale, t)
		}
	}
	return stale, nil
}

type fakeContacts map[int64]models.User

func (f fakeContacts) Contacts(_ context.Context, ids []int64) (map[int64]models.User, error) {
	out := map[int64]models.User{}
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type fakeTokens struct {
	mu      sync.Mutex
	tokens  map[int64][]string
	deleted []string
}

func (f *fakeTokens) SaveToken(context.Context, int64, string, string) error { return nil }
func (f *fakeTokens) DeleteToken(context.Context, int64, string) error       { return nil }

func (f *fakeTokens) TokensByUser(_ context.Context, userID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[userID], nil
}

func (f *fakeTokens) DeleteTokens(_ context.Context, tokens []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, tokens...)
	return nil
}

func TestOrderDeliveredFanOut(t *testing.T) {
	pub := &recordingPublisher{}
	hub := &recordingHub{}
	mailer := &recordingMailer{}
	pusher := &stalePusher{}
	tokens := &fakeTokens{tokens: map[int64][]string{buyerID: {"good-token", "stale-token"}}}
	n := &NotificationService{
		Publisher: pub,
		Hub:       hub,
		Pusher:    pusher,
		Mailer:    mailer,
		Users: fakeContacts{
			buyerID:  {ID: buyerID, Email: "buyer@example.com", Locale: "en"},
			sellerID: {ID: sellerID, Email: "seller@example.com", Locale: "ar"},
		},
		Tokens: tokens,
		Logger: &testLogger{},
		AppURL: "https://khidma.example",
	}

	o := paidOrder(42, fsm.StatusInProgress)
	o.ServiceTitle = "Logo design"
	n.OrderStatusChanged(o, fsm.StatusInProgress, fsm.StatusDelivered, sellerID)
	n.Wait()

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeOrderStatus, pub.events[0].Type)
	assert.Equal(t, fsm.StatusDelivered, pub.events[0].ToStatus)
	assert.ElementsMatch(t, []int64{buyerID, sellerID}, hub.users)
	assert.Equal(t, 1, hub.admins)

	require.Len(t, mailer.sent, 1, "only the buyer is asked to review the delivery")
	assert.Equal(t, "buyer@example.com", mailer.sent[0].to)
	assert.Equal(t, "Your order #42 was delivered", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].html, "https://khidma.example/orders/42")

	assert.Equal(t, []string{"Your order #42 was delivered"}, pusher.titles)
	assert.Equal(t, []string{"stale-token"}, tokens.deleted)
}

func TestPaymentReceivedMailsSellerInArabic(t *testing.T) {
	mailer := &recordingMailer{}
	n := &NotificationService{
		Mailer: mailer,
		Users: fakeContacts{
			buyerID:  {ID: buyerID, Email: "buyer@example.com", Locale: "en"},
			sellerID: {ID: sellerID, Email: "seller@example.com", Locale: "ar"},
		},
		Logger: &testLogger{},
	}
	o := paidOrder(7, fsm.StatusPending)
	o.ServiceTitle = "تصميم شعار"
	n.OrderStatusChanged(o, fsm.StatusPending, fsm.StatusInProgress, 0)
	n.Wait()

	require.Len(t, mailer.sent, 2)
	bySubject := map[string]string{}
	for _, m := range mailer.sent {
		bySubject[m.to] = m.subject
	}
	assert.Equal(t, "طلب جديد #7", bySubject["seller@example.com"])
	assert.Equal(t, "Work started on order #7", bySubject["buyer@example.com"])
}

func TestPayoutSentHasNoSubjectArgs(t *testing.T) {
	mailer := &recordingMailer{}
	n := &NotificationService{
		Mailer: mailer,
		Users:  fakeContacts{sellerID: {ID: sellerID, Email: "seller@example.com", Locale: "en"}},
		Logger: &testLogger{},
	}
	n.PayoutSent(models.Payout{ID: 1, SellerID: sellerID, NetCents: 13500, Currency: "SAR", Status: models.PayoutStatusPaid})
	n.Wait()

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Your earnings were sent", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].html, "135.00 SAR")
}
