package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/commonshq/samiti/internal/member/domain"
	"github.com/xuri/excelize/v2"
)

const memberSheet = "Members"

// fixed columns before the per-community custom field columns.
var memberHeaders = []string{"Full Name", "Phone", "Email"}

// ExportExcel writes the directory to an xlsx: fixed columns first, then
// one column per field definition in position order.
func (s *Service) ExportExcel(ctx context.Context) ([]byte, error) {
	defs, err := s.ListFieldDefs(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(memberSheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	headers := append([]string{}, memberHeaders...)
	for _, def := range defs {
		headers = append(headers, def.Name)
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(memberSheet, cell, header)
	}

	for rowIdx, member := range members {
		values := []string{member.FullName, member.Phone, member.Email}
		for _, def := range defs {
			values = append(values, member.Attributes[def.Name])
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(memberSheet, cell, value)
		}
	}
	f.SetActiveSheet(index)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportExcel upserts members from a sheet in the export layout. Rows
// are matched to existing members by full name, case-insensitive; custom
// field columns are resolved by header.
func (s *Service) ImportExcel(ctx context.Context, data []byte) (domain.ImportSummary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return domain.ImportSummary{}, domain.ErrInvalidWorkbook
	}
	defer f.Close()

	raw, err := f.GetRows(memberSheet)
	if err != nil || len(raw) == 0 {
		return domain.ImportSummary{}, domain.ErrInvalidWorkbook
	}

	headers := raw[0]
	existing, err := s.List(ctx, domain.ListFilter{})
	if err != nil {
		return domain.ImportSummary{}, err
	}
	byName := make(map[string]domain.Member, len(existing))
	for _, m := range existing {
		byName[strings.ToLower(m.FullName)] = m
	}

	var summary domain.ImportSummary
	for _, cells := range raw[1:] {
		cell := func(i int) string {
			if i < len(cells) {
				return strings.TrimSpace(cells[i])
			}
			return ""
		}

		name := cell(0)
		if name == "" {
			summary.Skipped++
			continue
		}

		attrs := make(map[string]string)
		for i := len(memberHeaders); i < len(headers); i++ {
			if v := cell(i); v != "" {
				attrs[strings.TrimSpace(headers[i])] = v
			}
		}

		if current, ok := byName[strings.ToLower(name)]; ok {
			_, err := s.Update(ctx, domain.UpdateMemberRequest{
				ID:         current.ID.String(),
				FullName:   name,
				Phone:      cell(1),
				Email:      cell(2),
				Attributes: attrs,
			})
			if err != nil {
				return domain.ImportSummary{}, err
			}
			summary.Updated++
			continue
		}

		_, err := s.Create(ctx, domain.CreateMemberRequest{
			FullName:   name,
			Phone:      cell(1),
			Email:      cell(2),
			Attributes: attrs,
		})
		if err != nil {
			return domain.ImportSummary{}, err
		}
		summary.Created++
	}
	return summary, nil
}
