package middleware

import "context"

// contextKey is a private key type to avoid collisions in context values.
type contextKey string

const (
	loggerKey     = contextKey("logger")
	actorIDKey    = contextKey("actorID")
	actorRolesKey = contextKey("actorRoles")
)

// GetActorIDFromCtx retrieves the authenticated actor ID from the context.
func GetActorIDFromCtx(ctx context.Context) (string, bool) {
	val := ctx.Value(actorIDKey)
	if val == nil {
		return "", false
	}
	actorID, ok := val.(string)
	return actorID, ok && actorID != ""
}

// GetActorRolesFromCtx retrieves the session role claims from the context.
// Returns nil when the request carried no role claims.
func GetActorRolesFromCtx(ctx context.Context) []string {
	val := ctx.Value(actorRolesKey)
	if val == nil {
		return nil
	}
	roles, _ := val.([]string)
	return roles
}

// WithActor returns a context carrying the actor ID and role claims. Used by
// the auth middleware and by tests that bypass HTTP.
func WithActor(ctx context.Context, actorID string, roles []string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey, actorID)
	return context.WithValue(ctx, actorRolesKey, roles)
}
