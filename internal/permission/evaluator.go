package permission

import (
	"fmt"
	"net/http"
	"slices"

	"yamdb/internal/shared"
)

// Kind identifies the resource a request targets.
type Kind int

const (
	KindCategory Kind = iota + 1
	KindGenre
	KindTitle
	KindReview
	KindComment
	KindSelfProfile
	KindUser
)

var kindNames = map[Kind]string{
	KindCategory:    "category",
	KindGenre:       "genre",
	KindTitle:       "title",
	KindReview:      "review",
	KindComment:     "comment",
	KindSelfProfile: "self_profile",
	KindUser:        "user",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsCatalog reports the admin-managed catalog kinds.
func (k Kind) IsCatalog() bool {
	return k == KindCategory || k == KindGenre || k == KindTitle
}

// IsAuthored reports the kinds that carry an author.
func (k Kind) IsAuthored() bool {
	return k == KindReview || k == KindComment
}

// FieldRole is the payload field a self-profile edit may never carry.
const FieldRole = "role"

// Request is one (verb, resource) tuple to authorize.
type Request struct {
	Verb string
	Kind Kind
	// Owner is the author (Review/Comment) or the profile owner (SelfProfile).
	Owner string
	// Fields lists the payload keys of a write, used by the self-profile rule.
	Fields []string
}

// IsSafe reports the read-only verbs.
func IsSafe(verb string) bool {
	switch verb {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isWrite(verb string) bool {
	switch verb {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Evaluator decides allow/deny for every resource handler.
// It is stateless and safe for concurrent use.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Allow evaluates the rules in precedence order. It has no side effects.
func (e *Evaluator) Allow(id Identity, req Request) bool {
	switch {
	case req.Kind == KindSelfProfile:
		return e.allowSelfProfile(id, req)
	case req.Kind == KindUser:
		// user administration, reads included
		return id.IsAdmin()
	case IsSafe(req.Verb):
		// public read access for catalog, reviews and comments
		return req.Kind.IsCatalog() || req.Kind.IsAuthored()
	case !isWrite(req.Verb):
		return false
	case req.Kind.IsCatalog():
		return id.IsAdmin()
	case req.Kind.IsAuthored():
		return e.allowAuthored(id, req)
	}
	return false
}

// Check is Allow expressed as an error wrapping shared.ErrPermissionDenied.
func (e *Evaluator) Check(id Identity, req Request) error {
	if e.Allow(id, req) {
		return nil
	}
	return fmt.Errorf("%s %s: %w", req.Verb, req.Kind, shared.ErrPermissionDenied)
}

func (e *Evaluator) allowSelfProfile(id Identity, req Request) bool {
	if !id.Owns(req.Owner) {
		return false
	}
	switch req.Verb {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodPatch:
		// self-service role elevation is forbidden for every caller, admins included
		return !slices.Contains(req.Fields, FieldRole)
	}
	return false
}

func (e *Evaluator) allowAuthored(id Identity, req Request) bool {
	if id.IsAnonymous() {
		return false
	}
	if req.Verb == http.MethodPost {
		return true
	}
	return id.Owns(req.Owner) || id.IsAdmin() || id.IsModerator()
}
