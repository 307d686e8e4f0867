package auth

import (
	"github.com/labstack/echo/v4"
)

type Role string

const (
	RolePatron    Role = "patron"
	RoleLibrarian Role = "librarian"
)

const identityKey = "identity"

// Identity is the account behind the current session. A session belongs to
// exactly one patron or one librarian.
type Identity struct {
	Role Role   `json:"role"`
	ID   int    `json:"id"`
	Name string `json:"name"`
	// CardNumber is only set for patrons, Username only for librarians.
	CardNumber string `json:"card_number,omitempty"`
	Username   string `json:"username,omitempty"`
}

func (i *Identity) IsPatron() bool {
	return i != nil && i.Role == RolePatron
}

func (i *Identity) IsLibrarian() bool {
	return i != nil && i.Role == RoleLibrarian
}

func setIdentity(c echo.Context, ident *Identity) {
	c.Set(identityKey, ident)
}

// FromContext returns the identity stored by the middleware, if any.
func FromContext(c echo.Context) (*Identity, bool) {
	ident, ok := c.Get(identityKey).(*Identity)
	return ident, ok && ident != nil
}

// MustFromContext is for handlers mounted behind one of the Require
// middlewares, where an identity is always present.
func MustFromContext(c echo.Context) *Identity {
	ident, ok := FromContext(c)
	if !ok {
		panic("auth: no identity on request")
	}
	return ident
}
