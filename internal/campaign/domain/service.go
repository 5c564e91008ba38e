package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateCampaignRequest struct {
	Name            string
	AmountDue       int64
	DueDate         *time.Time
	MessageTemplate string
}

type RecordEntryRequest struct {
	CampaignID    string
	MemberID      string
	AmountPaid    int64
	PaymentMethod string
	PaidAt        time.Time
}

// CampaignSummary pairs a campaign with its collection progress.
type CampaignSummary struct {
	Campaign       Campaign `json:"campaign"`
	MembersTotal   int      `json:"members_total"`
	MembersSettled int      `json:"members_settled"`
	AmountExpected int64    `json:"amount_expected"`
	AmountPaid     int64    `json:"amount_paid"`
}

// ReminderLink is one prefilled WhatsApp chat link for a member with an
// outstanding balance.
type ReminderLink struct {
	MemberID    snowflake.ID `json:"member_id"`
	MemberName  string       `json:"member_name"`
	Phone       string       `json:"phone"`
	Outstanding int64        `json:"outstanding"`
	Link        string       `json:"link"`
}

type ReminderResponse struct {
	Links          []ReminderLink `json:"links"`
	MembersSkipped int            `json:"members_skipped"`
}

type Service interface {
	Create(ctx context.Context, req CreateCampaignRequest) (Campaign, error)
	GetByID(ctx context.Context, id string) (Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
	Close(ctx context.Context, id string) (Campaign, error)

	RecordEntry(ctx context.Context, req RecordEntryRequest) (Entry, error)
	ListEntries(ctx context.Context, campaignID string) ([]Entry, error)
	Summary(ctx context.Context, campaignID string) (CampaignSummary, error)
	ReminderLinks(ctx context.Context, campaignID string) (ReminderResponse, error)
}

var (
	ErrInvalidCommunity = errors.New("invalid_community")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidMethod    = errors.New("invalid_method")
	ErrInvalidPaidAt    = errors.New("invalid_paid_at")
	ErrCampaignClosed   = errors.New("campaign_closed")
	ErrNotFound         = errors.New("not_found")
)
