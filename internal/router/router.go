// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/handler"
    "github.com/tpc-facilities/parking-lottery/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff authentication routes and their
// middleware.  Unauthenticated operations live under /v1/auth; the
// protected /v1/me probe demonstrates a valid session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // rotates the refresh token
    g.POST("/refresh", a.Refresh)
    // issues a new access token without rotating the refresh token
    g.POST("/refresh-access", a.RefreshAccess)
    // logout works without the JWT middleware so an expired session can
    // still be closed with its refresh token
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("ADMIN"))
    auth.GET("/me", a.Me)
}

// RegisterPublic registers the applicant-facing routes: form submission,
// the current-period probe and the published results.  Submission runs
// behind the rate limiter; the read-only routes sit behind the response
// cache since results never change once published.
func RegisterPublic(e *echo.Echo, app *handler.ApplicationHandler, results *handler.ResultsHandler,
    ratelimit, cache echo.MiddlewareFunc) {
    e.POST("/v1/applications", app.Submit, ratelimit)
    e.GET("/v1/periods/current", app.CurrentPeriod)
    e.GET("/v1/lottery/:period/results", results.Get, cache)
    e.GET("/v1/lottery/:period/results.csv", results.GetCSV)
}

// RegisterAdmin registers the staff-only surface under /v1/admin: the
// evidence-review queue, roster maintenance, the space inventory and
// the draw itself.  Every route requires a valid staff token.
func RegisterAdmin(e *echo.Echo, jwtSecret string, review *handler.ReviewHandler,
    apps *handler.AdminApplicationHandler, lot *handler.AdminLotteryHandler, spaces *handler.AdminSpaceHandler) {
    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN"))

    g.GET("/review/pending", review.Pending)
    g.POST("/review/:token/approve", review.Approve)
    g.POST("/review/:token/reject", review.Reject)

    g.GET("/applications", apps.List)
    g.POST("/applications", apps.Create)
    g.DELETE("/applications/:period/:applicant", apps.Delete)

    g.GET("/lottery/:period/preview", lot.Preview)
    g.POST("/lottery/:period/run", lot.Run)

    g.GET("/spaces", spaces.List)
    g.PUT("/spaces/:id", spaces.Update)
}
