package models

// User is the authenticated dashboard user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResponse is the login endpoint's body.
type LoginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	User  *User  `json:"user"`
	Error string `json:"error,omitempty"`
}

// Session is the durable local session record.
type Session struct {
	Token           string `json:"token,omitempty"`
	User            *User  `json:"user,omitempty"`
	RememberedEmail string `json:"remembered_email,omitempty"`
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Fixed storage locations shared by the session store and the route gate.
const (
	SessionStorageKey = "fleet.session"
	AuthCookieName    = "auth-token"
)
