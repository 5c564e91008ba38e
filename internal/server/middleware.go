package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/gin-gonic/gin"
)

const (
	HeaderCommunity = "X-Community-ID"
	HeaderUser      = "X-User-ID"
)

// CommunityContext resolves the calling community and user from request
// headers and injects both into the request context, where every service
// reads them. Requests without a community are rejected up front.
func CommunityContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		communityID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(HeaderCommunity)))
		if err != nil || communityID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := tenantctx.WithCommunityID(c.Request.Context(), int64(communityID))

		if raw := strings.TrimSpace(c.GetHeader(HeaderUser)); raw != "" {
			userID, err := snowflake.ParseString(raw)
			if err != nil || userID == 0 {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			ctx = tenantctx.WithUserID(ctx, int64(userID))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission gates a route on the casbin policy for the calling
// user in the calling community.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		communityID, ok := tenantctx.CommunityIDFromContext(ctx)
		if !ok || communityID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		userID, ok := tenantctx.UserIDFromContext(ctx)
		if !ok || userID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		allowed, err := s.authzSvc.Enforce(ctx, userID, communityID, object, action)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !allowed {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}
