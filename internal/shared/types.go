package shared

// AuthClaims is what a verified bearer token asserts about its holder.
// Role is deliberately absent: it is always read from the store.
type AuthClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
