package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/feature/domain"
	"github.com/commonshq/samiti/internal/feature/repository"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:featsvc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Feature{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	ctx := tenantctx.WithCommunityID(context.Background(), int64(node.Generate()))
	return svc, ctx
}

func TestUnknownCodesDefaultToEnabled(t *testing.T) {
	svc, ctx := newService(t)

	enabled, err := svc.IsEnabled(ctx, domain.CodeWhatsApp)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetTogglesAndUpserts(t *testing.T) {
	svc, ctx := newService(t)

	_, err := svc.Set(ctx, domain.SetRequest{Code: domain.CodeLottery, Enabled: false})
	require.NoError(t, err)

	enabled, err := svc.IsEnabled(ctx, domain.CodeLottery)
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = svc.Set(ctx, domain.SetRequest{Code: domain.CodeLottery, Name: "Lottery Events", Enabled: true})
	require.NoError(t, err)

	enabled, err = svc.IsEnabled(ctx, domain.CodeLottery)
	require.NoError(t, err)
	assert.True(t, enabled)

	features, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "Lottery Events", features[0].Name)
}

func TestSetValidation(t *testing.T) {
	svc, ctx := newService(t)

	_, err := svc.Set(ctx, domain.SetRequest{Code: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Set(context.Background(), domain.SetRequest{Code: domain.CodeLottery})
	assert.ErrorIs(t, err, domain.ErrInvalidCommunity)
}

func TestFlagsAreCommunityScoped(t *testing.T) {
	svc, ctx := newService(t)

	_, err := svc.Set(ctx, domain.SetRequest{Code: domain.CodeCampaigns, Enabled: false})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	otherCtx := tenantctx.WithCommunityID(context.Background(), int64(node.Generate()))

	enabled, err := svc.IsEnabled(otherCtx, domain.CodeCampaigns)
	require.NoError(t, err)
	assert.True(t, enabled)
}
