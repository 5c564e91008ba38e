package domain

import (
	"context"
	"errors"
)

type SetRequest struct {
	Code     string         `json:"code"`
	Name     string         `json:"name"`
	Enabled  bool           `json:"enabled"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Service interface {
	Set(ctx context.Context, req SetRequest) (Feature, error)
	// IsEnabled reports whether the community has the feature turned
	// on. Unknown codes default to enabled, so new deployments work
	// before any flags are written.
	IsEnabled(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]Feature, error)
}

var (
	ErrInvalidCommunity = errors.New("invalid_community")
	ErrInvalidCode      = errors.New("invalid_code")
	ErrNotFound         = errors.New("not_found")
)
