// Package permission holds the role model and the single permission evaluator
// every resource handler consults before touching the store.
package permission

import "fmt"

// Role is the role attached to an authenticated identity.
// moderator does not imply admin, there is no inferred hierarchy.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// ParseRole converts a stored or submitted role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// Identity is the caller as seen by the evaluator.
// The zero value is the anonymous caller.
type Identity struct {
	UserID      string
	Role        Role
	IsSuperuser bool
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated derives the effective identity of a known user.
// An unknown role degrades to RoleUser so a corrupt row never grants more than the default.
func Authenticated(userID string, role string, isSuperuser bool) Identity {
	r, err := ParseRole(role)
	if err != nil {
		r = RoleUser
	}
	return Identity{UserID: userID, Role: r, IsSuperuser: isSuperuser}
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// IsAdmin reports admin-equivalent power: the admin role or the superuser flag.
func (i Identity) IsAdmin() bool {
	if i.IsAnonymous() {
		return false
	}
	return i.Role == RoleAdmin || i.IsSuperuser
}

// IsModerator reports the moderator role only.
func (i Identity) IsModerator() bool {
	return !i.IsAnonymous() && i.Role == RoleModerator
}

// Owns reports whether the identity is the given owner.
func (i Identity) Owns(ownerID string) bool {
	return !i.IsAnonymous() && ownerID != "" && i.UserID == ownerID
}
