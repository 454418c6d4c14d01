// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"github.com/gin-gonic/gin"
)

// Identity represents the authenticated user's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access user information without depending on Gin.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() int64
	// Roles returns the user's assigned roles.
	Roles() []string
	// HasRole checks if the user has a specific role.
	HasRole(role string) bool
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	userID        int64
	roles         []string
	authenticated bool
}

func (i *identity) UserID() int64 {
	return i.userID
}

func (i *identity) Roles() []string {
	return i.roles
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	roles, rolesOK := c.Get(ContextRolesKey)

	if !userOK {
		return &identity{authenticated: false}
	}

	id, ok := userID.(int64)
	if !ok {
		return &identity{authenticated: false}
	}

	result := &identity{userID: id, authenticated: true}
	if rolesOK {
		if roleList, ok := roles.([]string); ok {
			result.roles = roleList
		}
	}
	return result
}
