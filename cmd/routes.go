package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"khidmaBack/internal/models"
)

// router registers handlers on pat with the route pattern as metrics label.
type router struct {
	mux *pat.PatternServeMux
	app *application
}

func (rt router) handle(method, pattern string, chain alice.Chain, fn http.HandlerFunc) {
	rt.mux.Add(method, pattern, chain.Append(rt.app.observe(pattern)).ThenFunc(fn))
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, secureHeaders, negotiateLanguage, makeResponseJSON)
	publicMiddleware := standardMiddleware.Append(app.optionalAuth)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	buyerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleBuyer))
	sellerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleSeller))
	adminMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()
	rt := router{mux: mux, app: app}

	mux.Get("/healthz", http.HandlerFunc(app.healthz))
	mux.Get("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	mux.Get("/ws", alice.New(app.recoverPanic, negotiateLanguage).ThenFunc(app.serveWS))
	if app.localDir != "" {
		prefix := strings.TrimSuffix(app.uploadsURL, "/")
		mux.Get(prefix+"/", http.StripPrefix(prefix, http.FileServer(http.Dir(app.localDir))))
	}

	// Users
	user := app.userHandler
	rt.handle("POST", "/user/sign_up", standardMiddleware, user.SignUp)
	rt.handle("POST", "/user/sign_in", standardMiddleware, user.SignIn)
	rt.handle("POST", "/user/refresh", standardMiddleware, user.Refresh)
	rt.handle("POST", "/user/sign_out", standardMiddleware, user.SignOut)
	rt.handle("GET", "/user/profile", authMiddleware, user.Profile)
	rt.handle("PATCH", "/user/profile", authMiddleware, user.UpdateProfile)
	rt.handle("PUT", "/user/payout_account", sellerMiddleware, user.SetPayoutAccount)
	rt.handle("POST", "/user/device_token", authMiddleware, user.RegisterDevice)
	rt.handle("DELETE", "/user/device_token", authMiddleware, user.RemoveDevice)

	// Categories
	rt.handle("GET", "/categories", standardMiddleware, app.categoryHandler.Tree)

	// Services
	svc := app.serviceHandler
	rt.handle("GET", "/services", standardMiddleware, svc.ListServices)
	rt.handle("POST", "/services", sellerMiddleware, svc.CreateService)
	rt.handle("GET", "/services/:id", publicMiddleware, svc.GetService)
	rt.handle("PUT", "/services/:id", sellerMiddleware, svc.UpdateService)
	rt.handle("DELETE", "/services/:id", sellerMiddleware, svc.DeleteService)
	rt.handle("POST", "/services/:id/images", sellerMiddleware, svc.UploadImages)
	rt.handle("DELETE", "/services/:id/images", sellerMiddleware, svc.RemoveImage)
	rt.handle("GET", "/services/:id/reviews", standardMiddleware, app.reviewHandler.ListForService)
	rt.handle("GET", "/seller/services", sellerMiddleware, svc.ListMine)

	// Orders
	order := app.orderHandler
	rt.handle("POST", "/payments/webhook", standardMiddleware, order.Webhook)
	rt.handle("POST", "/orders", buyerMiddleware, order.PlaceOrder)
	rt.handle("GET", "/orders", authMiddleware, order.ListMine)
	rt.handle("GET", "/orders/:id", authMiddleware, order.GetOrder)
	rt.handle("PATCH", "/orders/:id/status", authMiddleware, order.ChangeStatus)

	// Reviews
	rt.handle("POST", "/reviews", buyerMiddleware, app.reviewHandler.CreateReview)
	rt.handle("POST", "/reviews/:id/reply", sellerMiddleware, app.reviewHandler.Reply)

	// Seller earnings
	rt.handle("GET", "/seller/balance", sellerMiddleware, app.payoutHandler.MyBalance)
	rt.handle("GET", "/seller/payouts", sellerMiddleware, app.payoutHandler.MyPayouts)

	// Admin: users
	rt.handle("GET", "/admin/users", adminMiddleware, user.ListUsers)
	rt.handle("PATCH", "/admin/users/status", adminMiddleware, user.BulkUpdateStatus)
	rt.handle("GET", "/admin/users/:id", adminMiddleware, user.GetUser)
	rt.handle("PATCH", "/admin/users/:id/status", adminMiddleware, user.UpdateStatus)
	rt.handle("PATCH", "/admin/users/:id/verify", adminMiddleware, user.SetVerified)
	rt.handle("DELETE", "/admin/users/:id", adminMiddleware, user.DeleteUser)

	// Admin: categories
	category := app.categoryHandler
	rt.handle("GET", "/admin/categories", adminMiddleware, category.ListAll)
	rt.handle("POST", "/admin/categories", adminMiddleware, category.CreateCategory)
	rt.handle("GET", "/admin/categories/:id", adminMiddleware, category.GetCategory)
	rt.handle("PUT", "/admin/categories/:id", adminMiddleware, category.UpdateCategory)
	rt.handle("DELETE", "/admin/categories/:id", adminMiddleware, category.DeleteCategory)

	// Admin: services
	rt.handle("GET", "/admin/services", adminMiddleware, svc.AdminList)
	rt.handle("PATCH", "/admin/services/status", adminMiddleware, svc.BulkModerate)
	rt.handle("GET", "/admin/services/:id", adminMiddleware, svc.AdminGet)
	rt.handle("PATCH", "/admin/services/:id/status", adminMiddleware, svc.Moderate)
	rt.handle("DELETE", "/admin/services/:id", adminMiddleware, svc.AdminDelete)

	// Admin: orders
	rt.handle("GET", "/admin/orders", adminMiddleware, order.AdminList)
	rt.handle("PATCH", "/admin/orders/status", adminMiddleware, order.BulkChangeStatus)
	rt.handle("GET", "/admin/orders/:id", adminMiddleware, order.GetOrder)
	rt.handle("PATCH", "/admin/orders/:id/status", adminMiddleware, order.ChangeStatus)
	rt.handle("DELETE", "/admin/orders/:id", adminMiddleware, order.DeleteOrder)

	// Admin: reviews
	review := app.reviewHandler
	rt.handle("GET", "/admin/reviews", adminMiddleware, review.AdminList)
	rt.handle("PATCH", "/admin/reviews/:id/hidden", adminMiddleware, review.SetHidden)
	rt.handle("DELETE", "/admin/reviews/:id", adminMiddleware, review.DeleteReview)

	// Admin: disputes
	dispute := app.disputeHandler
	rt.handle("GET", "/admin/disputes", adminMiddleware, dispute.ListDisputes)
	rt.handle("GET", "/admin/disputes/:id", adminMiddleware, dispute.GetDispute)
	rt.handle("POST", "/admin/disputes/:id/resolve", adminMiddleware, dispute.Resolve)

	// Admin: money
	payout := app.payoutHandler
	rt.handle("GET", "/admin/payouts/balances", adminMiddleware, payout.Balances)
	rt.handle("POST", "/admin/payouts/process", adminMiddleware, payout.Process)
	rt.handle("GET", "/admin/payouts", adminMiddleware, payout.ListPayouts)
	rt.handle("GET", "/admin/refunds", adminMiddleware, payout.ListRefunds)

	// Admin: reporting
	rt.handle("GET", "/admin/dashboard", adminMiddleware, app.reportHandler.Dashboard)
	rt.handle("GET", "/admin/reports/financial", adminMiddleware, app.reportHandler.Financial)

	return mux
}

func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	w.Header().Set("Content-Type", "application/json")
	if err := app.db.PingContext(ctx); err != nil {
		app.logger.WithField("component", "http").Errorf("healthz: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}
