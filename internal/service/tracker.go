package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"devtrack/internal/linkstore"
	"devtrack/internal/model"
	"devtrack/internal/repository"
	"devtrack/internal/sheets"
	"devtrack/internal/storage"
)

var (
	// ErrNotLinked is the link store's sentinel, re-exported so callers only
	// depend on service errors.
	ErrNotLinked = linkstore.ErrNotLinked

	ErrDeviceRequired  = errors.New("device is required")
	ErrInvalidSheetRef = errors.New("invalid spreadsheet reference")
	ErrSheetNotFound   = errors.New("spreadsheet not found")
	ErrSheetForbidden  = errors.New("service account has no access to the spreadsheet")
	ErrUpstream        = errors.New("sheets api request failed")
	ErrSheetEmpty      = errors.New("sheet has no header row")
	ErrColumnNotFound  = errors.New("column not found in header row")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrAmbiguousDevice = errors.New("device matches more than one row")
	ErrExportDisabled  = errors.New("export storage is not configured")
	ErrHistoryDisabled = errors.New("update history is not configured")
)

// Well-known column headers. Lookup is case-insensitive on trimmed cells,
// so "device", " Device " and "DEVICE" all match.
const (
	DeviceColumn    = "Device"
	CompletedColumn = "Completed"
	CommentColumn   = "Comment"
)

// Values written to the Completed cell.
const (
	CompletedValue = "Completed"
	PendingValue   = "Pending"
)

// DeviceListResult is the service-level DTO for a full sheet read.
type DeviceListResult struct {
	SpreadsheetID string         `json:"spreadsheet_id"`
	Title         string         `json:"title"`
	SheetTitle    string         `json:"sheet_title"`
	Headers       []string       `json:"headers"`
	Devices       []model.Device `json:"devices"`
	Total         int            `json:"total"`
}

// UpdateResult echoes a single-cell patch so the client can reconcile its
// optimistic update.
type UpdateResult struct {
	Device string `json:"device"`
	Column string `json:"column"`
	Cell   string `json:"cell"`
	Value  string `json:"value"`
}

// ExportResult describes an uploaded sheet snapshot.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HistoryResult is the service-level DTO for paginated cell updates.
type HistoryResult struct {
	Items []model.CellUpdate `json:"data"`
	Total int                `json:"total"`
}

// TrackerService defines the use cases for the device-tracking proxy.
type TrackerService interface {
	// Link resolves ref (spreadsheet ID or URL), verifies access and
	// persists the pointer, replacing any previous link.
	Link(ctx context.Context, ref string) (*model.SheetLink, error)

	// Status returns the current link enriched with live titles.
	Status(ctx context.Context) (*model.SheetLink, error)

	// Unlink removes the pointer.
	Unlink(ctx context.Context) error

	// ListDevices reads the whole first tab and maps its rows to devices.
	ListDevices(ctx context.Context) (*DeviceListResult, error)

	// SetCompleted patches the Completed cell of the named device.
	SetCompleted(ctx context.Context, device string, completed bool) (*UpdateResult, error)

	// SetComment patches the Comment cell of the named device. An empty
	// comment clears the cell.
	SetComment(ctx context.Context, device, comment string) (*UpdateResult, error)

	// Export uploads an .xlsx snapshot of the linked tab to object storage.
	Export(ctx context.Context) (*ExportResult, error)

	// History returns recent cell updates using limit/offset.
	History(ctx context.Context, limit, offset int) (*HistoryResult, error)
}

// trackerService is a concrete implementation of TrackerService.
// history and objStore may be nil; the matching features then report
// themselves disabled instead of failing.
type trackerService struct {
	client       sheets.Client
	store        linkstore.Store
	history      repository.HistoryRepository
	objStore     storage.Storage
	exportExpiry time.Duration
}

// NewTrackerService constructs a new TrackerService.
func NewTrackerService(
	client sheets.Client,
	store linkstore.Store,
	history repository.HistoryRepository,
	objStore storage.Storage,
	exportExpiry time.Duration,
) TrackerService {
	return &trackerService{
		client:       client,
		store:        store,
		history:      history,
		objStore:     objStore,
		exportExpiry: exportExpiry,
	}
}

func (s *trackerService) Link(ctx context.Context, ref string) (*model.SheetLink, error) {
	id, err := sheets.ParseSpreadsheetRef(ref)
	if err != nil {
		return nil, ErrInvalidSheetRef
	}

	// Verify the service account can actually see the spreadsheet before
	// persisting anything.
	info, err := s.client.Describe(ctx, id)
	if err != nil {
		return nil, mapUpstream(err)
	}

	link := &model.SheetLink{
		SpreadsheetID: id,
		Title:         info.Title,
		SheetTitle:    info.SheetTitle,
		LinkedAt:      time.Now().UTC(),
	}
	if err := s.store.Save(link); err != nil {
		return nil, fmt.Errorf("save link: %w", err)
	}
	return link, nil
}

func (s *trackerService) Status(ctx context.Context) (*model.SheetLink, error) {
	link, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	info, err := s.client.Describe(ctx, link.SpreadsheetID)
	if err != nil {
		return nil, mapUpstream(err)
	}
	link.Title = info.Title
	link.SheetTitle = info.SheetTitle
	return link, nil
}

func (s *trackerService) Unlink(ctx context.Context) error {
	if _, err := s.store.Load(); err != nil {
		return err
	}
	return s.store.Clear()
}

func (s *trackerService) ListDevices(ctx context.Context) (*DeviceListResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	deviceIdx, err := findColumn(snap.headers, DeviceColumn)
	if err != nil {
		return nil, err
	}
	// Completed and Comment are optional for listing; a sheet without them
	// still renders, just with empty status and comment.
	completedIdx, _ := findColumn(snap.headers, CompletedColumn)
	commentIdx, _ := findColumn(snap.headers, CommentColumn)

	devices := make([]model.Device, 0, len(snap.rows))
	for i, row := range snap.rows {
		name := strings.TrimSpace(cellString(cellAt(row, deviceIdx)))
		if name == "" {
			// Blank padding rows between data are common in hand-edited sheets.
			continue
		}
		d := model.Device{Name: name, Row: i + 2}
		if completedIdx >= 0 {
			d.Status = cellString(cellAt(row, completedIdx))
			d.Completed = isCompletedValue(d.Status)
		}
		if commentIdx >= 0 {
			d.Comment = cellString(cellAt(row, commentIdx))
		}
		for j, h := range snap.headers {
			if j == deviceIdx || j == completedIdx || j == commentIdx || h == "" {
				continue
			}
			v := cellString(cellAt(row, j))
			if v == "" {
				continue
			}
			if d.Fields == nil {
				d.Fields = make(map[string]string)
			}
			d.Fields[h] = v
		}
		devices = append(devices, d)
	}

	return &DeviceListResult{
		SpreadsheetID: snap.link.SpreadsheetID,
		Title:         snap.link.Title,
		SheetTitle:    snap.link.SheetTitle,
		Headers:       snap.headers,
		Devices:       devices,
		Total:         len(devices),
	}, nil
}

func (s *trackerService) SetCompleted(ctx context.Context, device string, completed bool) (*UpdateResult, error) {
	value := PendingValue
	if completed {
		value = CompletedValue
	}
	return s.updateCell(ctx, device, CompletedColumn, value)
}

func (s *trackerService) SetComment(ctx context.Context, device, comment string) (*UpdateResult, error) {
	return s.updateCell(ctx, device, CommentColumn, comment)
}

// updateCell is the core routine: locate the unique data row whose Device
// cell matches device, locate the target column by header name, compute the
// A1 range of that single cell and patch it.
func (s *trackerService) updateCell(ctx context.Context, device, column, value string) (*UpdateResult, error) {
	if strings.TrimSpace(device) == "" {
		return nil, ErrDeviceRequired
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	deviceIdx, err := findColumn(snap.headers, DeviceColumn)
	if err != nil {
		return nil, err
	}
	colIdx, err := findColumn(snap.headers, column)
	if err != nil {
		return nil, err
	}

	rowIdx, err := findDeviceRow(snap.rows, deviceIdx, device)
	if err != nil {
		return nil, err
	}

	// Header is sheet row 1, so data row i lives on sheet row i+2.
	sheetRow := rowIdx + 2
	cell := sheets.CellRef(snap.link.SheetTitle, colIdx, sheetRow)
	oldValue := cellString(cellAt(snap.rows[rowIdx], colIdx))

	if err := s.client.UpdateCell(ctx, snap.link.SpreadsheetID, cell, value); err != nil {
		return nil, mapUpstream(err)
	}

	matched := strings.TrimSpace(cellString(cellAt(snap.rows[rowIdx], deviceIdx)))
	s.recordUpdate(ctx, snap.link.SpreadsheetID, matched, column, cell, oldValue, value)

	return &UpdateResult{
		Device: matched,
		Column: column,
		Cell:   cell,
		Value:  value,
	}, nil
}

// sheetSnapshot is one consistent read of the linked tab.
type sheetSnapshot struct {
	link    *model.SheetLink
	headers []string
	rows    [][]interface{}
}

// snapshot re-discovers the first tab on every call so renaming it never
// breaks the link.
func (s *trackerService) snapshot(ctx context.Context) (*sheetSnapshot, error) {
	link, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	info, err := s.client.Describe(ctx, link.SpreadsheetID)
	if err != nil {
		return nil, mapUpstream(err)
	}
	link.Title = info.Title
	link.SheetTitle = info.SheetTitle

	values, err := s.client.ReadRows(ctx, link.SpreadsheetID, info.SheetTitle)
	if err != nil {
		return nil, mapUpstream(err)
	}
	if len(values) == 0 {
		return nil, ErrSheetEmpty
	}

	headers := make([]string, len(values[0]))
	for i, c := range values[0] {
		headers[i] = strings.TrimSpace(cellString(c))
	}

	return &sheetSnapshot{link: link, headers: headers, rows: values[1:]}, nil
}

// findColumn returns the index of the named header, matching
// case-insensitively on trimmed values.
func findColumn(headers []string, name string) (int, error) {
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// findDeviceRow returns the index (within the data rows) of the unique row
// whose device cell matches, case-insensitively on trimmed values.
func findDeviceRow(rows [][]interface{}, deviceIdx int, device string) (int, error) {
	want := strings.TrimSpace(device)
	found := -1
	for i, row := range rows {
		got := strings.TrimSpace(cellString(cellAt(row, deviceIdx)))
		if got == "" || !strings.EqualFold(got, want) {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("%w: %s", ErrAmbiguousDevice, want)
		}
		found = i
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: %s", ErrDeviceNotFound, want)
	}
	return found, nil
}

// cellAt tolerates ragged rows: trailing empty cells are simply absent from
// the Sheets API response.
func cellAt(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isCompletedValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "completed", "done", "true", "yes", "1":
		return true
	}
	return false
}

// mapUpstream translates Sheets API failures into service errors. 404 and
// 403 identify a broken or revoked link; everything else is a generic
// upstream failure.
func mapUpstream(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case 404:
			return ErrSheetNotFound
		case 403:
			return ErrSheetForbidden
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
