package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// CommunityKey is the request context key for the active community ID.
type CommunityKey struct{}

// UserKey is the request context key for the authenticated user ID.
type UserKey struct{}

// WithCommunityID stores the community ID in the context.
func WithCommunityID(ctx context.Context, communityID int64) context.Context {
	return context.WithValue(ctx, CommunityKey{}, communityID)
}

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserKey{}, userID)
}

// CommunityIDFromContext returns the community ID from context, if set.
func CommunityIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, CommunityKey{})
}

// UserIDFromContext returns the authenticated user ID from context, if set.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, UserKey{})
}

func idFromContext(ctx context.Context, key any) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(key).(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
