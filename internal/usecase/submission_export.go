package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"obsidiana-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

// maxExportRows caps a single export.
const maxExportRows = 10000

var ErrUnsupportedFormat = errors.New("unsupported export format")

var exportColumns = []string{"CREATED AT", "STATE", "SENDER", "SUBJECT", "ERROR", "CLIENT IP", "FORM ID"}

func exportRow(rec domain.SubmissionRecord) []interface{} {
	return []interface{}{
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.State,
		rec.SenderEmail,
		rec.Subject,
		rec.ErrorMessage,
		rec.ClientIP,
		rec.FormID,
	}
}

// ExportSubmissions renders the audit log as an xlsx (default) or csv file
// and returns its bytes and a download name.
func (uc *ContactService) ExportSubmissions(ctx context.Context, format string) ([]byte, string, error) {
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if uc.repo == nil {
		return nil, "", ErrAuditDisabled
	}

	records, _, err := uc.repo.List(ctx, maxExportRows, 0)
	if err != nil {
		return nil, "", fmt.Errorf("fetch submissions for export: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	if format == "csv" {
		data, err := exportCSV(records)
		return data, fmt.Sprintf("contact_submissions_%s.csv", stamp), err
	}
	data, err := exportExcel(records)
	return data, fmt.Sprintf("contact_submissions_%s.xlsx", stamp), err
}

func exportExcel(records []domain.SubmissionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1B1B1F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for rowIdx, rec := range records {
		for colIdx, value := range exportRow(rec) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportColumns))
	f.SetColWidth(sheet, "A", lastCol, 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(records []domain.SubmissionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := exportRow(rec)
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = fmt.Sprint(v)
		}
		if err := w.Write(values); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
