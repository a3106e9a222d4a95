// Package gate implements the edge check that keeps unauthenticated
// browsers on the login page and authenticated ones off it. It only looks
// for the auth cookie; the token is never validated here.
package gate

import (
	"net/http"
	"strings"

	"github.com/example/fleetops/internal/models"
)

// Action is the outcome of a gate decision.
type Action int

const (
	Allow Action = iota
	RedirectToLogin
	RedirectToHome
)

// Routes configures the paths the gate knows about.
type Routes struct {
	Login  string   // login page
	Home   string   // landing page after login
	Public []string // path prefixes served without a session
}

// DefaultRoutes returns the dashboard's route layout.
func DefaultRoutes() Routes {
	return Routes{
		Login:  "/login",
		Home:   "/",
		Public: []string{"/api/", "/static/", "/favicon.ico", "/healthz"},
	}
}

// Decision is an Action plus the redirect target, if any.
type Decision struct {
	Action   Action
	Location string
}

// Decide is the gate predicate. hasToken reports only whether a token is present.
func Decide(r Routes, path string, hasToken bool) Decision {
	for _, p := range r.Public {
		if strings.HasPrefix(path, p) {
			return Decision{Action: Allow}
		}
	}
	onLogin := path == r.Login || strings.HasPrefix(path, r.Login+"/")
	switch {
	case onLogin && hasToken:
		return Decision{Action: RedirectToHome, Location: r.Home}
	case !onLogin && !hasToken:
		return Decision{Action: RedirectToLogin, Location: r.Login}
	}
	return Decision{Action: Allow}
}

// HasAuthCookie reports whether req carries a non-empty auth cookie.
func HasAuthCookie(req *http.Request) bool {
	c, err := req.Cookie(models.AuthCookieName)
	return err == nil && c.Value != ""
}

// Middleware applies Decide to every request before next.
func Middleware(r Routes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			d := Decide(r, req.URL.Path, HasAuthCookie(req))
			if d.Action != Allow {
				http.Redirect(w, req, d.Location, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
