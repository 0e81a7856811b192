package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"devtrack/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export snapshots the linked tab into an .xlsx workbook and uploads it to
// object storage under exports/<uuid>.xlsx.
func (s *trackerService) Export(ctx context.Context) (*ExportResult, error) {
	if s.objStore == nil {
		return nil, ErrExportDisabled
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	// Tab titles from Google may exceed the xlsx 31-char limit or carry
	// characters excelize rejects; fall back to the default name then.
	if err := f.SetSheetName(sheetName, snap.link.SheetTitle); err == nil {
		sheetName = snap.link.SheetTitle
	}

	writeRow := func(rowNum int, cells []interface{}) error {
		for col, v := range cells {
			cellName, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cellName, v); err != nil {
				return err
			}
		}
		return nil
	}

	header := make([]interface{}, len(snap.headers))
	for i, h := range snap.headers {
		header[i] = h
	}
	if err := writeRow(1, header); err != nil {
		return nil, fmt.Errorf("build export workbook: %w", err)
	}
	for i, row := range snap.rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, fmt.Errorf("build export workbook: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode export workbook: %w", err)
	}

	key := "exports/" + uuid.New().String() + ".xlsx"
	info, err := s.objStore.Put(ctx, key, buf, storage.PutObjectOptions{
		Size:        int64(buf.Len()),
		ContentType: xlsxContentType,
		Metadata: map[string]string{
			"spreadsheet-id": snap.link.SpreadsheetID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.objStore.PresignGet(ctx, info.Key, s.exportExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &ExportResult{
		Key:       info.Key,
		URL:       url,
		ExpiresAt: time.Now().UTC().Add(s.exportExpiry),
	}, nil
}
