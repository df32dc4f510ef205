// Package routes maps HTTP paths onto handlers.
package routes

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tripwise/middleware"
	"tripwise/profile"
	"tripwise/ratelim"
	"tripwise/settings"
	"tripwise/strategies"
	"tripwise/trips"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth       *middleware.Auth
	Limiter    *ratelim.RateLimiter
	Strategies *strategies.Handler
	Trips      *trips.Handler
	Profile    *profile.Handler
	Settings   *settings.Handler
}

func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func RoutesWrapper(router *httprouter.Router, h Handlers) {
	router.GET("/health", Index)
	AddStrategyRoutes(router, h)
	AddTripRoutes(router, h)
	AddProfileRoutes(router, h)
	AddSettingsRoutes(router, h)
}

func AddStrategyRoutes(router *httprouter.Router, h Handlers) {
	// generation and critique spend provider quota, so they sit behind the limiter
	router.POST("/api/analyze", h.Limiter.Limit(h.Auth.OptionalAuth(h.Strategies.Analyze)))
	router.POST("/api/critique", h.Limiter.Limit(h.Auth.OptionalAuth(h.Strategies.Critique)))

	router.POST("/api/strategies", h.Auth.Authenticate(h.Strategies.Save))
	router.GET("/api/strategies", h.Auth.Authenticate(h.Strategies.List))
	router.GET("/api/strategies/:id", h.Auth.Authenticate(h.Strategies.Get))
	router.DELETE("/api/strategies/:id", h.Auth.Authenticate(h.Strategies.Delete))
	router.GET("/api/strategies/:id/pdf", h.Auth.Authenticate(h.Strategies.ExportPDF))
}

func AddTripRoutes(router *httprouter.Router, h Handlers) {
	router.POST("/api/trips", h.Auth.Authenticate(h.Trips.CreateOrUpdate))
	router.GET("/api/trips", h.Auth.Authenticate(h.Trips.List))
	router.DELETE("/api/trips/:id", h.Auth.Authenticate(h.Trips.Delete))
}

func AddProfileRoutes(router *httprouter.Router, h Handlers) {
	router.GET("/api/profile", h.Auth.Authenticate(h.Profile.GetProfile))
	router.GET("/api/history", h.Auth.Authenticate(h.Profile.ListHistory))
	router.DELETE("/api/history/:id", h.Auth.Authenticate(h.Profile.DeleteHistory))
}

func AddSettingsRoutes(router *httprouter.Router, h Handlers) {
	router.GET("/api/settings/keys", h.Auth.Authenticate(h.Settings.GetKeys))
	router.PUT("/api/settings/keys", h.Auth.Authenticate(h.Settings.UpdateKeys))
	router.POST("/api/settings/keys/verify", h.Limiter.Limit(h.Auth.Authenticate(h.Settings.VerifyKey)))
}
