package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/middleware"
)

// AccessLevel names the gate a route sits behind.
type AccessLevel string

const (
	AccessPublic        AccessLevel = "public"
	AccessAuthenticated AccessLevel = "authenticated"
	AccessStudent       AccessLevel = "student"
	AccessInstructor    AccessLevel = "instructor"
	AccessAdmin         AccessLevel = "admin"
)

// Route is one entry of the route table.
type Route struct {
	Method    string
	Path      string
	Access    AccessLevel
	Throttled bool
	Handler   gin.HandlerFunc
}

// Handlers groups the resource handlers mounted by Register.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Classes    *ClassHandler
	Selections *SelectionHandler
	Payments   *PaymentHandler
	Metrics    *MetricsHandler
}

// Gates supplies the collaborators the access levels need. Limiter may be nil.
type Gates struct {
	Tokens  middleware.TokenValidator
	Roles   middleware.RoleLookup
	Limiter *middleware.RateLimiter
}

// Routes enumerates every endpoint with its required access level.
func Routes(h Handlers) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/", Access: AccessPublic, Handler: h.Metrics.Root},
		{Method: http.MethodGet, Path: "/health", Access: AccessPublic, Handler: h.Metrics.Health},
		{Method: http.MethodGet, Path: "/ready", Access: AccessPublic, Handler: h.Metrics.Ready},
		{Method: http.MethodGet, Path: "/metrics", Access: AccessPublic, Handler: h.Metrics.Prometheus},
		{Method: http.MethodGet, Path: "/metrics/summary", Access: AccessAdmin, Handler: h.Metrics.Summary},

		{Method: http.MethodPost, Path: "/jwt", Access: AccessPublic, Throttled: true, Handler: h.Auth.IssueToken},
		{Method: http.MethodPost, Path: "/logout", Access: AccessAuthenticated, Handler: h.Auth.Logout},

		{Method: http.MethodPost, Path: "/users", Access: AccessPublic, Throttled: true, Handler: h.Users.Register},
		{Method: http.MethodGet, Path: "/users", Access: AccessAdmin, Handler: h.Users.List},
		{Method: http.MethodGet, Path: "/users/check-role/:email", Access: AccessPublic, Handler: h.Users.CheckRole},
		{Method: http.MethodGet, Path: "/users/:email", Access: AccessAuthenticated, Handler: h.Users.Get},
		{Method: http.MethodPatch, Path: "/users/admin/:id", Access: AccessAdmin, Handler: h.Users.MakeAdmin},
		{Method: http.MethodPatch, Path: "/users/instructor/:id", Access: AccessAdmin, Handler: h.Users.MakeInstructor},
		{Method: http.MethodGet, Path: "/all-instructor", Access: AccessPublic, Handler: h.Users.Instructors},

		{Method: http.MethodGet, Path: "/classes", Access: AccessPublic, Handler: h.Classes.ListAll},
		{Method: http.MethodGet, Path: "/classes/:id", Access: AccessPublic, Handler: h.Classes.Get},
		{Method: http.MethodGet, Path: "/approved-classes", Access: AccessPublic, Handler: h.Classes.ListApproved},
		{Method: http.MethodPost, Path: "/class", Access: AccessInstructor, Handler: h.Classes.Create},
		{Method: http.MethodGet, Path: "/my-classes", Access: AccessInstructor, Handler: h.Classes.MyClasses},
		{Method: http.MethodPatch, Path: "/status/:id", Access: AccessAdmin, Handler: h.Classes.SetStatus},
		{Method: http.MethodPut, Path: "/feedback/:id", Access: AccessAdmin, Handler: h.Classes.SetFeedback},

		{Method: http.MethodPost, Path: "/select-class", Access: AccessStudent, Handler: h.Selections.Select},
		{Method: http.MethodGet, Path: "/selected-classes", Access: AccessAuthenticated, Handler: h.Selections.List},
		{Method: http.MethodDelete, Path: "/delete-class/:id", Access: AccessStudent, Handler: h.Selections.Remove},

		{Method: http.MethodPost, Path: "/create-payment-intent", Access: AccessAuthenticated, Handler: h.Payments.CreateIntent},
		{Method: http.MethodPost, Path: "/payments", Access: AccessStudent, Handler: h.Payments.Pay},
		{Method: http.MethodGet, Path: "/enrolled-classes", Access: AccessAuthenticated, Handler: h.Payments.Enrolled},
		{Method: http.MethodGet, Path: "/payment-history", Access: AccessAuthenticated, Handler: h.Payments.History},
		{Method: http.MethodGet, Path: "/payment-history/export", Access: AccessAuthenticated, Handler: h.Payments.Export},
	}
}

// Register mounts routes on r, prefixing each handler with the chain its access level requires.
func Register(r gin.IRoutes, gates Gates, routes []Route) {
	for _, route := range routes {
		chain := gates.chain(route)
		r.Handle(route.Method, route.Path, append(chain, route.Handler)...)
	}
}

func (g Gates) chain(route Route) []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if route.Throttled && g.Limiter != nil {
		chain = append(chain, g.Limiter.Middleware())
	}
	if route.Access == AccessPublic {
		return chain
	}

	chain = append(chain, middleware.Authenticate(g.Tokens))
	switch route.Access {
	case AccessStudent:
		chain = append(chain, middleware.RequireStudent(g.Roles))
	case AccessInstructor:
		chain = append(chain, middleware.RequireInstructor(g.Roles))
	case AccessAdmin:
		chain = append(chain, middleware.RequireAdmin(g.Roles))
	}
	return chain
}
