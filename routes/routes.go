package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smartclass/admin"
	"smartclass/analytics"
	"smartclass/auth"
	"smartclass/cart"
	"smartclass/classes"
	"smartclass/metrics"
	"smartclass/middleware"
	"smartclass/moderator"
	"smartclass/pay"
	"smartclass/ratelim"
	"smartclass/users"
	"smartclass/utils"

	"github.com/julienschmidt/httprouter"
)

// Deps carries everything the route table binds to.
type Deps struct {
	Gate    *middleware.Gate
	Limiter *ratelim.RateLimiter
	Ping    func(ctx context.Context) error

	Auth      *auth.Handler
	Users     *users.Handler
	Classes   *classes.Handler
	Cart      *cart.Handler
	Moderator *moderator.Handler
	Pay       *pay.PaymentService
	Analytics *analytics.Handler
	Admin     *admin.Handler
}

// Route is one entry of the route table.
type Route struct {
	Method  string
	Path    string
	Policy  middleware.Policy
	Handle  httprouter.Handle
	Limited bool
}

// RoutesWrapper registers the route table plus the unguarded service routes.
func RoutesWrapper(router *httprouter.Router, d *Deps) {
	for _, rt := range Table(d) {
		var limit middleware.Middleware
		if rt.Limited && d.Limiter != nil {
			limit = d.Limiter.Limit
		}
		router.Handle(rt.Method, rt.Path, middleware.Chain(
			middleware.Instrument(rt.Method, rt.Path),
			limit,
			d.Gate.Enforce(rt.Policy),
		)(rt.Handle))
	}
	AddMiscRoutes(router, d.Ping)
}

func AddMiscRoutes(router *httprouter.Router, ping func(ctx context.Context) error) {
	router.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "Smart Class Hub server is running")
	})
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				utils.RespondWithError(w, http.StatusServiceUnavailable, "database unreachable")
				return
			}
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	})
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
}
