package domain

import (
	"context"
	"errors"
)

type CreateFieldDefRequest struct {
	Name      string
	FieldType FieldType
	Options   []string
	Required  bool
	Position  int
}

type CreateMemberRequest struct {
	FullName   string
	Phone      string
	Email      string
	Attributes map[string]string
}

type UpdateMemberRequest struct {
	ID         string
	FullName   string
	Phone      string
	Email      string
	Attributes map[string]string
}

type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type Service interface {
	CreateFieldDef(ctx context.Context, req CreateFieldDefRequest) (FieldDef, error)
	ListFieldDefs(ctx context.Context) ([]FieldDef, error)
	DeleteFieldDef(ctx context.Context, id string) error

	Create(ctx context.Context, req CreateMemberRequest) (Member, error)
	Update(ctx context.Context, req UpdateMemberRequest) (Member, error)
	GetByID(ctx context.Context, id string) (Member, error)
	List(ctx context.Context, filter ListFilter) ([]Member, error)
	Delete(ctx context.Context, id string) error

	ExportExcel(ctx context.Context) ([]byte, error)
	ImportExcel(ctx context.Context, data []byte) (ImportSummary, error)
}

var (
	ErrInvalidCommunity  = errors.New("invalid_community")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidFieldType  = errors.New("invalid_field_type")
	ErrInvalidOptions    = errors.New("invalid_options")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrUnknownAttribute  = errors.New("unknown_attribute")
	ErrInvalidAttribute  = errors.New("invalid_attribute_value")
	ErrRequiredAttribute = errors.New("required_attribute_missing")
	ErrDuplicateField    = errors.New("duplicate_field")
	ErrInvalidWorkbook   = errors.New("invalid_workbook")
	ErrNotFound          = errors.New("not_found")
)
