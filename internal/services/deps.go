package services

import (
	"context"
	"time"

	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
	"khidmaBack/internal/repositories"
)

// Logger defines minimal logging interface required by services.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	SetPayoutAccount(ctx context.Context, userID int64, accountID string) error
	SetStatus(ctx context.Context, userID int64, status string) error
	SetVerified(ctx context.Context, userID int64, verified bool) error
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error)
	GetUserDetail(ctx context.Context, id int64) (models.UserDetail, error)
	Contacts(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, refreshToken string) (models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
}

type DeviceTokenStore interface {
	SaveToken(ctx context.Context, userID int64, token, platform string) error
	DeleteToken(ctx context.Context, userID int64, token string) error
	TokensByUser(ctx context.Context, userID int64) ([]string, error)
	DeleteTokens(ctx context.Context, tokens []string) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (models.Category, error)
	UpdateCategory(ctx context.Context, c models.Category) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type ServiceStore interface {
	CreateService(ctx context.Context, s models.Service) (models.Service, error)
	UpdateService(ctx context.Context, s models.Service) (models.Service, error)
	GetServiceByID(ctx context.Context, id int64) (models.Service, error)
	GetPackage(ctx context.Context, packageID int64) (models.Package, models.Service, error)
	ListServices(ctx context.Context, f models.ServiceFilter) ([]models.Service, int, error)
	Moderate(ctx context.Context, id int64, action, reason string) error
	DeleteService(ctx context.Context, id int64) error
	SetImages(ctx context.Context, id int64, images models.Images) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
	SetPaymentIntent(ctx context.Context, orderID int64, intentID string) error
	GetOrderByID(ctx context.Context, id int64) (models.Order, error)
	GetOrderByIntent(ctx context.Context, intentID string) (models.Order, error)
	GetOrderDetail(ctx context.Context, id int64) (models.OrderDetail, error)
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, int, error)
	ApplyTransition(ctx context.Context, t repositories.Transition) error
	DeleteOrder(ctx context.Context, id int64) error
	DeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type WebhookStore interface {
	Record(ctx context.Context, eventID, eventType string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type ReviewStore interface {
	CreateReview(ctx context.Context, rv models.Review) (models.Review, error)
	GetReviewByID(ctx context.Context, id int64) (models.Review, error)
	ListReviews(ctx context.Context, f models.ReviewFilter) ([]models.Review, int, error)
	Reply(ctx context.Context, id, sellerID int64, reply string) error
	SetHidden(ctx context.Context, id int64, hidden bool) error
	DeleteReview(ctx context.Context, id int64) error
}

type DisputeStore interface {
	GetDispute(ctx context.Context, id int64) (models.Dispute, error)
	OpenDisputeForOrder(ctx context.Context, orderID int64) (models.Dispute, error)
	ListDisputes(ctx context.Context, f models.DisputeFilter) ([]models.Dispute, int, error)
	Resolve(ctx context.Context, res repositories.Resolution) (int64, error)
}

type RefundStore interface {
	CreateRefund(ctx context.Context, orderID int64, amount int64, reason string) (int64, error)
	MarkSucceeded(ctx context.Context, id int64, processorID string) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	ListRefunds(ctx context.Context, f models.RefundFilter) ([]models.Refund, int, error)
}

type PayoutStore interface {
	Balances(ctx context.Context, sellerIDs []int64) ([]models.SellerBalance, error)
	ReservePayout(ctx context.Context, sellerID int64, currency string, minimum int64) (models.Payout, error)
	MarkPaid(ctx context.Context, id int64, transferID string) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	ListPayouts(ctx context.Context, f models.PayoutFilter) ([]models.Payout, int, error)
}

type ReportStore interface {
	Dashboard(ctx context.Context) (models.Dashboard, error)
	Buckets(ctx context.Context, from, to time.Time, groupBy string) ([]models.ReportBucket, error)
	TopSellers(ctx context.Context, from, to time.Time, limit int) ([]models.TopEntry, error)
	TopCategories(ctx context.Context, from, to time.Time, english bool, limit int) ([]models.TopEntry, error)
}

// PaymentGateway is the subset of the processor client used by services.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req pay.IntentRequest) (pay.Intent, error)
	Refund(ctx context.Context, req pay.RefundRequest) (pay.RefundResult, error)
	Transfer(ctx context.Context, req pay.TransferRequest) (pay.Transfer, error)
}

// MetricsRecorder is implemented by *metrics.Metrics.
type MetricsRecorder interface {
	OrderCreated()
	OrderTransition(from, to string)
	Refund(status string)
	Payout(status string)
	NotifyFailed(channel string)
}

type noopMetrics struct{}

func (noopMetrics) OrderCreated()               {}
func (noopMetrics) OrderTransition(_, _ string) {}
func (noopMetrics) Refund(string)               {}
func (noopMetrics) Payout(string)               {}
func (noopMetrics) NotifyFailed(string)         {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// Notifier fans domain changes out to every configured channel.
type Notifier interface {
	OrderCreated(o models.Order)
	OrderStatusChanged(o models.Order, from, to string, actorID int64)
	DisputeResolved(o models.Order, resolution string)
	PayoutSent(p models.Payout)
	ServiceModerated(s models.Service, action string)
	ReviewCreated(rv models.Review)
}

// Broadcaster is implemented by *ws.Hub.
type Broadcaster interface {
	Push(userID int64, payload interface{})
	BroadcastAdmins(payload interface{})
}
