// Package parser owns the spreadsheet layout: column order, the literal
// status strings, and the date format. Export and import both go through
// it, so the layout can only drift in one place.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/commonshq/samiti/internal/report/domain"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Distributions"

// Status and return literals. These are parse anchors for re-import and
// for spreadsheets edited by hand; changing them breaks old files.
const (
	StatusFullyPaid     = "Fully Paid"
	StatusPartiallyPaid = "Partially Paid"
	StatusUnpaid        = "Unpaid"

	ReturnedYes = "Returned"
	ReturnedNo  = "Not Returned"
)

const dateLayout = "2006-01-02"

// listSeparator joins multiple payment dates or methods in one cell.
const listSeparator = "; "

// columns after the three level-value columns, in sheet order.
var fixedHeaders = []string{
	"Member", "Contact", "Book Number", "Ticket Range",
	"Expected Amount", "Amount Paid", "Outstanding", "Status",
	"Payment Dates", "Payment Methods", "Return Status",
}

// Headers returns the full header row. Missing level names fall back to
// generic labels so the column positions stay fixed at three.
func Headers(levelNames []string) []string {
	headers := make([]string, 0, 3+len(fixedHeaders))
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("Level %d", i+1)
		if i < len(levelNames) && strings.TrimSpace(levelNames[i]) != "" {
			name = levelNames[i]
		}
		headers = append(headers, name)
	}
	return append(headers, fixedHeaders...)
}

// BuildWorkbook renders rows into an xlsx file.
func BuildWorkbook(levelNames []string, rows []domain.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	headers := Headers(levelNames)
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(SheetName, cell, header)
		f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	for i, row := range rows {
		values := cellValues(row)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(SheetName, cell, value)
		}
	}

	for i := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		f.SetColWidth(SheetName, col, col, 16)
	}
	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValues(row domain.Row) []any {
	dates := make([]string, 0, len(row.PaymentDates))
	for _, d := range row.PaymentDates {
		dates = append(dates, d.Format(dateLayout))
	}

	returned := ReturnedNo
	if row.Returned {
		returned = ReturnedYes
	}

	return []any{
		row.LevelValues[0], row.LevelValues[1], row.LevelValues[2],
		row.MemberName, row.ContactPhone,
		row.BookNumber,
		fmt.Sprintf("%d-%d", row.TicketStart, row.TicketEnd),
		row.ExpectedAmount, row.AmountPaid, row.Outstanding,
		row.Status,
		strings.Join(dates, listSeparator),
		strings.Join(row.PaymentMethods, listSeparator),
		returned,
	}
}

// ParseWorkbook reads an exported (or hand-edited) file back into rows.
// The header row is skipped; fully blank rows are ignored.
func ParseWorkbook(r io.Reader) ([]domain.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.ErrInvalidWorkbook
	}
	defer f.Close()

	raw, err := f.GetRows(SheetName)
	if err != nil {
		return nil, domain.ErrInvalidWorkbook
	}
	if len(raw) == 0 {
		return nil, domain.ErrInvalidWorkbook
	}

	rows := make([]domain.Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		if blankRow(cells) {
			continue
		}
		row, err := parseRow(cells)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(cells []string) (domain.Row, error) {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	bookNumber, err := strconv.Atoi(cell(5))
	if err != nil || bookNumber <= 0 {
		return domain.Row{}, fmt.Errorf("%w: bad book number %q", domain.ErrInvalidWorkbook, cell(5))
	}

	start, end, err := parseTicketRange(cell(6))
	if err != nil {
		return domain.Row{}, err
	}

	expected, err := parseAmount(cell(7))
	if err != nil {
		return domain.Row{}, err
	}
	paid, err := parseAmount(cell(8))
	if err != nil {
		return domain.Row{}, err
	}
	outstanding, err := parseAmount(cell(9))
	if err != nil {
		return domain.Row{}, err
	}

	status, err := ParseStatus(cell(10))
	if err != nil {
		return domain.Row{}, err
	}

	dates, err := parseDates(cell(11))
	if err != nil {
		return domain.Row{}, err
	}

	returned, err := ParseReturned(cell(13))
	if err != nil {
		return domain.Row{}, err
	}

	return domain.Row{
		LevelValues:    [3]string{cell(0), cell(1), cell(2)},
		MemberName:     cell(3),
		ContactPhone:   cell(4),
		BookNumber:     bookNumber,
		TicketStart:    start,
		TicketEnd:      end,
		ExpectedAmount: expected,
		AmountPaid:     paid,
		Outstanding:    outstanding,
		Status:         status,
		PaymentDates:   dates,
		PaymentMethods: splitList(cell(12)),
		Returned:       returned,
	}, nil
}

// ParseStatus validates a payment status cell against the exact export
// literals.
func ParseStatus(s string) (string, error) {
	switch s {
	case StatusFullyPaid, StatusPartiallyPaid, StatusUnpaid:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", domain.ErrInvalidWorkbook, s)
}

// ParseReturned validates a return-status cell. A blank cell reads as
// not returned.
func ParseReturned(s string) (bool, error) {
	switch s {
	case ReturnedYes:
		return true, nil
	case ReturnedNo, "":
		return false, nil
	}
	return false, fmt.Errorf("%w: unknown return status %q", domain.ErrInvalidWorkbook, s)
}

func parseTicketRange(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: bad ticket range %q", domain.ErrInvalidWorkbook, s)
	}
	start, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	end, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err1 != nil || err2 != nil || end < start {
		return 0, 0, fmt.Errorf("%w: bad ticket range %q", domain.ErrInvalidWorkbook, s)
	}
	return start, end, nil
}

func parseAmount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad amount %q", domain.ErrInvalidWorkbook, s)
	}
	return v, nil
}

func parseDates(s string) ([]time.Time, error) {
	var out []time.Time
	for _, part := range splitList(s) {
		d, err := time.Parse(dateLayout, part)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", domain.ErrInvalidWorkbook, part)
		}
		out = append(out, d)
	}
	return out, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
