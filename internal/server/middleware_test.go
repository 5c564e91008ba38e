package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/authorization"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuthz struct {
	allow   bool
	lastObj string
	lastAct string
}

func (f *fakeAuthz) Enforce(ctx context.Context, userID, communityID snowflake.ID, object, action string) (bool, error) {
	f.lastObj = object
	f.lastAct = action
	return f.allow, nil
}

func (f *fakeAuthz) AssignRole(ctx context.Context, userID, communityID snowflake.ID, role string) error {
	return nil
}

func (f *fakeAuthz) RolesFor(ctx context.Context, userID, communityID snowflake.ID) ([]string, error) {
	return nil, nil
}

var _ authorization.Service = (*fakeAuthz)(nil)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	return r
}

func TestCommunityContextRequiresHeader(t *testing.T) {
	r := newTestEngine()
	r.Use(CommunityContext())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommunityContextInjectsIDs(t *testing.T) {
	r := newTestEngine()
	r.Use(CommunityContext())
	r.GET("/ping", func(c *gin.Context) {
		communityID, ok := tenantctx.CommunityIDFromContext(c.Request.Context())
		require.True(t, ok)
		userID, ok := tenantctx.UserIDFromContext(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"community": communityID.String(),
			"user":      userID.String(),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderCommunity, "1001")
	req.Header.Set(HeaderUser, "2002")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1001")
	assert.Contains(t, w.Body.String(), "2002")
}

func TestRequirePermissionDenied(t *testing.T) {
	authz := &fakeAuthz{allow: false}
	s := &Server{log: zap.NewNop(), authzSvc: authz}

	r := newTestEngine()
	r.Use(CommunityContext())
	r.POST("/guarded", s.RequirePermission("payment", "delete"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(HeaderCommunity, "1001")
	req.Header.Set(HeaderUser, "2002")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "payment", authz.lastObj)
	assert.Equal(t, "delete", authz.lastAct)
}

func TestRequirePermissionAllowed(t *testing.T) {
	s := &Server{log: zap.NewNop(), authzSvc: &fakeAuthz{allow: true}}

	r := newTestEngine()
	r.Use(CommunityContext())
	r.POST("/guarded", s.RequirePermission("payment", "write"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(HeaderCommunity, "1001")
	req.Header.Set(HeaderUser, "2002")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionNeedsUser(t *testing.T) {
	s := &Server{log: zap.NewNop(), authzSvc: &fakeAuthz{allow: true}}

	r := newTestEngine()
	r.Use(CommunityContext())
	r.POST("/guarded", s.RequirePermission("payment", "write"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set(HeaderCommunity, "1001")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", eventdomain.ErrInvalidName, http.StatusBadRequest},
		{"not found", eventdomain.ErrNotFound, http.StatusNotFound},
		{"conflict", eventdomain.ErrEventClosed, http.StatusConflict},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine()
			r.GET("/boom", func(c *gin.Context) {
				AbortWithError(c, tc.err)
			})

			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
		})
	}
}
