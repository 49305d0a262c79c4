package adminauth

import "context"

type identityContextKey string

const identityKey identityContextKey = "staff_identity"

type Identity struct {
	UserID   int64
	Role     string
	Username string
}

// CanModerate reports whether the identity may work the moderation queue.
func (i Identity) CanModerate() bool {
	return i.Role == RoleAdmin || i.Role == RoleModerator
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
