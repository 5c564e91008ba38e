// Package pdf renders printable documents for collectors to hand out.
package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/fx"
)

// ReceiptData is everything the payment receipt prints. Amounts are
// preformatted strings so the layout stays currency-agnostic.
type ReceiptData struct {
	CommunityName string
	EventName     string
	ReceiptNumber string
	BookNumber    string
	TicketRange   string
	LocationPath  string
	PaidBy        string
	CollectedBy   string
	AmountPaid    string
	PaymentMethod string
	PaymentDate   string
	TotalPaid     string
	Outstanding   string
	Status        string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type MarotoProvider struct{}

func Provide() Provider {
	return &MarotoProvider{}
}

var Module = fx.Module("providers.pdf",
	fx.Provide(Provide),
)

func (p *MarotoProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(25,
		text.NewCol(8, "Payment Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.ReceiptNumber, props.Text{
			Size:  10,
			Align: align.Right,
			Top:   5,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New(data.CommunityName, props.Text{Style: fontstyle.Bold}),
			text.New(data.EventName, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Received from", props.Text{Style: fontstyle.Bold}),
			text.New(data.PaidBy, props.Text{Top: 5}),
			text.New(data.LocationPath, props.Text{Top: 9}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, data.AmountPaid+" received on "+data.PaymentDate, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(4, "Book", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Tickets", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Method", props.Text{Style: fontstyle.Bold, Size: 9}),
	)
	m.AddRow(12,
		text.NewCol(4, data.BookNumber, props.Text{Size: 9}),
		text.NewCol(4, data.TicketRange, props.Text{Size: 9}),
		text.NewCol(4, data.PaymentMethod, props.Text{Size: 9}),
	)

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total paid", props.Text{Size: 9}),
		text.NewCol(3, data.TotalPaid, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Outstanding", props.Text{Size: 9}),
		text.NewCol(3, data.Outstanding, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		col.New(6),
		text.NewCol(3, "Status", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(3, data.Status, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	if data.CollectedBy != "" {
		m.AddRow(15,
			text.NewCol(12, "Collected by "+data.CollectedBy, props.Text{Size: 8, Top: 5}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
