package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	linkMocks "devtrack/internal/linkstore/mocks"
	"devtrack/internal/model"
	"devtrack/internal/repository"
	repoMocks "devtrack/internal/repository/mocks"
	"devtrack/internal/sheets"
	sheetsMocks "devtrack/internal/sheets/mocks"
	"devtrack/internal/storage"
	storeMocks "devtrack/internal/storage/mocks"
)

const testSpreadsheetID = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"

// stubSheet wires Load/Describe/ReadRows for one consistent read of a tab
// named "Devices".
func stubSheet(mStore *linkMocks.MockStore, mClient *sheetsMocks.MockClient, rows [][]interface{}) {
	mStore.On("Load").Return(&model.SheetLink{SpreadsheetID: testSpreadsheetID}, nil)
	mClient.On("Describe", mock.Anything, testSpreadsheetID).Return(&sheets.SpreadsheetInfo{
		ID:         testSpreadsheetID,
		Title:      "Device Tracker",
		SheetTitle: "Devices",
	}, nil)
	mClient.On("ReadRows", mock.Anything, testSpreadsheetID, "Devices").Return(rows, nil)
}

func defaultRows() [][]interface{} {
	return [][]interface{}{
		{"Device", "Location", "Completed", "Comment"},
		{"router-01", "HQ", "Pending", ""},
		{"switch-02", "Branch", "Completed", "replaced PSU"},
		{" printer-03 ", "HQ"},
		{""},
	}
}

func TestTrackerService_Link(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		ref        string
		setupMocks func(mClient *sheetsMocks.MockClient, mStore *linkMocks.MockStore)
		wantErr    error
	}{
		{
			name: "happy path with url",
			ref:  "https://docs.google.com/spreadsheets/d/" + testSpreadsheetID + "/edit#gid=0",
			setupMocks: func(mClient *sheetsMocks.MockClient, mStore *linkMocks.MockStore) {
				mClient.On("Describe", ctx, testSpreadsheetID).Return(&sheets.SpreadsheetInfo{
					ID:         testSpreadsheetID,
					Title:      "Device Tracker",
					SheetTitle: "Devices",
				}, nil)
				mStore.On("Save", mock.MatchedBy(func(link *model.SheetLink) bool {
					return link.SpreadsheetID == testSpreadsheetID && !link.LinkedAt.IsZero()
				})).Return(nil)
			},
		},
		{
			name:       "invalid reference",
			ref:        "not a sheet",
			setupMocks: func(mClient *sheetsMocks.MockClient, mStore *linkMocks.MockStore) {},
			wantErr:    ErrInvalidSheetRef,
		},
		{
			name: "no access",
			ref:  testSpreadsheetID,
			setupMocks: func(mClient *sheetsMocks.MockClient, mStore *linkMocks.MockStore) {
				mClient.On("Describe", ctx, testSpreadsheetID).
					Return(nil, &googleapi.Error{Code: 403})
			},
			wantErr: ErrSheetForbidden,
		},
		{
			name: "spreadsheet missing",
			ref:  testSpreadsheetID,
			setupMocks: func(mClient *sheetsMocks.MockClient, mStore *linkMocks.MockStore) {
				mClient.On("Describe", ctx, testSpreadsheetID).
					Return(nil, &googleapi.Error{Code: 404})
			},
			wantErr: ErrSheetNotFound,
		},
		{
			name: "upstream failure",
			ref:  testSpreadsheetID,
			setupMocks: func(mClient *sheetsMocks.MockClient, mStore *linkMocks.MockStore) {
				mClient.On("Describe", ctx, testSpreadsheetID).
					Return(nil, &googleapi.Error{Code: 500})
			},
			wantErr: ErrUpstream,
		},
		{
			name: "store save error",
			ref:  testSpreadsheetID,
			setupMocks: func(mClient *sheetsMocks.MockClient, mStore *linkMocks.MockStore) {
				mClient.On("Describe", ctx, testSpreadsheetID).Return(&sheets.SpreadsheetInfo{
					ID:         testSpreadsheetID,
					SheetTitle: "Devices",
				}, nil)
				mStore.On("Save", mock.Anything).Return(errors.New("disk full"))
			},
			wantErr: errors.New("save link"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mClient := new(sheetsMocks.MockClient)
			mStore := new(linkMocks.MockStore)
			svc := NewTrackerService(mClient, mStore, nil, nil, 0)

			tt.setupMocks(mClient, mStore)

			link, err := svc.Link(ctx, tt.ref)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, link)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, link)
				assert.Equal(t, testSpreadsheetID, link.SpreadsheetID)
				assert.Equal(t, "Device Tracker", link.Title)
				assert.Equal(t, "Devices", link.SheetTitle)
			}
			mClient.AssertExpectations(t)
			mStore.AssertExpectations(t)
		})
	}
}

func TestTrackerService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("linked", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(mClient, mStore, nil, nil, 0)

		mStore.On("Load").Return(&model.SheetLink{SpreadsheetID: testSpreadsheetID}, nil)
		mClient.On("Describe", ctx, testSpreadsheetID).Return(&sheets.SpreadsheetInfo{
			ID:         testSpreadsheetID,
			Title:      "Device Tracker",
			SheetTitle: "Devices",
		}, nil)

		link, err := svc.Status(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "Device Tracker", link.Title)
		assert.Equal(t, "Devices", link.SheetTitle)
	})

	t.Run("not linked", func(t *testing.T) {
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(new(sheetsMocks.MockClient), mStore, nil, nil, 0)

		mStore.On("Load").Return(nil, ErrNotLinked)

		link, err := svc.Status(ctx)
		assert.ErrorIs(t, err, ErrNotLinked)
		assert.Nil(t, link)
	})
}

func TestTrackerService_Unlink(t *testing.T) {
	ctx := context.Background()

	t.Run("linked", func(t *testing.T) {
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(new(sheetsMocks.MockClient), mStore, nil, nil, 0)

		mStore.On("Load").Return(&model.SheetLink{SpreadsheetID: testSpreadsheetID}, nil)
		mStore.On("Clear").Return(nil)

		assert.NoError(t, svc.Unlink(ctx))
		mStore.AssertExpectations(t)
	})

	t.Run("not linked", func(t *testing.T) {
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(new(sheetsMocks.MockClient), mStore, nil, nil, 0)

		mStore.On("Load").Return(nil, ErrNotLinked)

		assert.ErrorIs(t, svc.Unlink(ctx), ErrNotLinked)
	})
}

func TestTrackerService_ListDevices(t *testing.T) {
	ctx := context.Background()

	t.Run("maps rows to devices", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(mClient, mStore, nil, nil, 0)

		stubSheet(mStore, mClient, defaultRows())

		res, err := svc.ListDevices(ctx)
		require.NoError(t, err)

		assert.Equal(t, testSpreadsheetID, res.SpreadsheetID)
		assert.Equal(t, "Devices", res.SheetTitle)
		assert.Equal(t, []string{"Device", "Location", "Completed", "Comment"}, res.Headers)
		// The blank padding row is skipped.
		require.Len(t, res.Devices, 3)
		assert.Equal(t, 3, res.Total)

		first := res.Devices[0]
		assert.Equal(t, "router-01", first.Name)
		assert.Equal(t, 2, first.Row)
		assert.Equal(t, "Pending", first.Status)
		assert.False(t, first.Completed)
		assert.Equal(t, map[string]string{"Location": "HQ"}, first.Fields)

		second := res.Devices[1]
		assert.True(t, second.Completed)
		assert.Equal(t, "replaced PSU", second.Comment)

		// Ragged row: missing Completed/Comment cells, trimmed name.
		third := res.Devices[2]
		assert.Equal(t, "printer-03", third.Name)
		assert.Equal(t, 4, third.Row)
		assert.False(t, third.Completed)
		assert.Empty(t, third.Comment)
	})

	t.Run("numeric device names survive", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(mClient, mStore, nil, nil, 0)

		stubSheet(mStore, mClient, [][]interface{}{
			{"Device", "Completed"},
			{float64(42), "Pending"},
		})

		res, err := svc.ListDevices(ctx)
		require.NoError(t, err)
		require.Len(t, res.Devices, 1)
		assert.Equal(t, "42", res.Devices[0].Name)
	})

	t.Run("missing device column", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(mClient, mStore, nil, nil, 0)

		stubSheet(mStore, mClient, [][]interface{}{
			{"Hostname", "Completed"},
			{"router-01", "Pending"},
		})

		_, err := svc.ListDevices(ctx)
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})

	t.Run("empty sheet", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(mClient, mStore, nil, nil, 0)

		stubSheet(mStore, mClient, [][]interface{}{})

		_, err := svc.ListDevices(ctx)
		assert.ErrorIs(t, err, ErrSheetEmpty)
	})

	t.Run("not linked", func(t *testing.T) {
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(new(sheetsMocks.MockClient), mStore, nil, nil, 0)

		mStore.On("Load").Return(nil, ErrNotLinked)

		_, err := svc.ListDevices(ctx)
		assert.ErrorIs(t, err, ErrNotLinked)
	})
}

func TestTrackerService_SetCompleted(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		device     string
		completed  bool
		rows       [][]interface{}
		updateErr  error
		wantCell   string
		wantValue  string
		wantDevice string
		wantErr    error
	}{
		{
			name:       "marks completed",
			device:     "router-01",
			completed:  true,
			rows:       defaultRows(),
			wantCell:   "'Devices'!C2",
			wantValue:  CompletedValue,
			wantDevice: "router-01",
		},
		{
			name:       "marks pending",
			device:     "switch-02",
			completed:  false,
			rows:       defaultRows(),
			wantCell:   "'Devices'!C3",
			wantValue:  PendingValue,
			wantDevice: "switch-02",
		},
		{
			name:       "match is case-insensitive and trimmed",
			device:     "  PRINTER-03 ",
			completed:  true,
			rows:       defaultRows(),
			wantCell:   "'Devices'!C4",
			wantValue:  CompletedValue,
			wantDevice: "printer-03",
		},
		{
			name:    "device not found",
			device:  "server-99",
			rows:    defaultRows(),
			wantErr: ErrDeviceNotFound,
		},
		{
			name:   "ambiguous device",
			device: "alpha",
			rows: [][]interface{}{
				{"Device", "Completed"},
				{"alpha", "Pending"},
				{" ALPHA ", "Pending"},
			},
			wantErr: ErrAmbiguousDevice,
		},
		{
			name:   "completed column missing",
			device: "router-01",
			rows: [][]interface{}{
				{"Device", "Comment"},
				{"router-01", ""},
			},
			wantErr: ErrColumnNotFound,
		},
		{
			name:      "upstream failure on write",
			device:    "router-01",
			completed: true,
			rows:      defaultRows(),
			updateErr: &googleapi.Error{Code: 500},
			wantErr:   ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mClient := new(sheetsMocks.MockClient)
			mStore := new(linkMocks.MockStore)
			svc := NewTrackerService(mClient, mStore, nil, nil, 0)

			stubSheet(mStore, mClient, tt.rows)
			if tt.wantCell != "" || tt.updateErr != nil {
				cell := tt.wantCell
				if cell == "" {
					cell = mock.Anything
				}
				mClient.On("UpdateCell", ctx, testSpreadsheetID, cell, mock.Anything).
					Return(tt.updateErr)
			}

			res, err := svc.SetCompleted(ctx, tt.device, tt.completed)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDevice, res.Device)
			assert.Equal(t, CompletedColumn, res.Column)
			assert.Equal(t, tt.wantCell, res.Cell)
			assert.Equal(t, tt.wantValue, res.Value)
			mClient.AssertExpectations(t)
		})
	}

	t.Run("empty device", func(t *testing.T) {
		svc := NewTrackerService(new(sheetsMocks.MockClient), new(linkMocks.MockStore), nil, nil, 0)
		_, err := svc.SetCompleted(ctx, "  ", true)
		assert.ErrorIs(t, err, ErrDeviceRequired)
	})
}

func TestTrackerService_SetComment(t *testing.T) {
	ctx := context.Background()

	t.Run("writes comment cell", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(mClient, mStore, nil, nil, 0)

		stubSheet(mStore, mClient, defaultRows())
		mClient.On("UpdateCell", ctx, testSpreadsheetID, "'Devices'!D3", "swapped uplink").
			Return(nil)

		res, err := svc.SetComment(ctx, "switch-02", "swapped uplink")
		require.NoError(t, err)
		assert.Equal(t, CommentColumn, res.Column)
		assert.Equal(t, "'Devices'!D3", res.Cell)
		assert.Equal(t, "swapped uplink", res.Value)
		mClient.AssertExpectations(t)
	})

	t.Run("empty comment clears the cell", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		svc := NewTrackerService(mClient, mStore, nil, nil, 0)

		stubSheet(mStore, mClient, defaultRows())
		mClient.On("UpdateCell", ctx, testSpreadsheetID, "'Devices'!D3", "").Return(nil)

		res, err := svc.SetComment(ctx, "switch-02", "")
		require.NoError(t, err)
		assert.Equal(t, "", res.Value)
	})
}

func TestTrackerService_HistoryRecording(t *testing.T) {
	ctx := context.Background()

	t.Run("successful update is recorded", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		mHist := new(repoMocks.MockHistoryRepository)
		svc := NewTrackerService(mClient, mStore, mHist, nil, 0)

		stubSheet(mStore, mClient, defaultRows())
		mClient.On("UpdateCell", ctx, testSpreadsheetID, "'Devices'!C2", CompletedValue).Return(nil)
		mHist.On("Insert", ctx, mock.MatchedBy(func(rec *model.CellUpdate) bool {
			return rec.ID != "" &&
				rec.Device == "router-01" &&
				rec.Column == CompletedColumn &&
				rec.Cell == "'Devices'!C2" &&
				rec.OldValue == "Pending" &&
				rec.NewValue == CompletedValue
		})).Return(&model.CellUpdate{ID: "stored"}, nil)

		_, err := svc.SetCompleted(ctx, "router-01", true)
		assert.NoError(t, err)
		mHist.AssertExpectations(t)
	})

	t.Run("insert failure does not fail the update", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		mHist := new(repoMocks.MockHistoryRepository)
		svc := NewTrackerService(mClient, mStore, mHist, nil, 0)

		stubSheet(mStore, mClient, defaultRows())
		mClient.On("UpdateCell", ctx, testSpreadsheetID, "'Devices'!C2", CompletedValue).Return(nil)
		mHist.On("Insert", ctx, mock.Anything).Return(nil, errors.New("db down"))

		res, err := svc.SetCompleted(ctx, "router-01", true)
		assert.NoError(t, err)
		assert.NotNil(t, res)
	})
}

func TestTrackerService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc := NewTrackerService(new(sheetsMocks.MockClient), new(linkMocks.MockStore), nil, nil, 0)
		_, err := svc.History(ctx, 10, 0)
		assert.ErrorIs(t, err, ErrHistoryDisabled)
	})

	t.Run("defaults applied", func(t *testing.T) {
		mHist := new(repoMocks.MockHistoryRepository)
		svc := NewTrackerService(new(sheetsMocks.MockClient), new(linkMocks.MockStore), mHist, nil, 0)

		mHist.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 0}).
			Return(&repository.PageResult[model.CellUpdate]{
				Items: []model.CellUpdate{{ID: "1"}},
				Total: 1,
			}, nil)

		res, err := svc.History(ctx, 0, -3)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
		mHist.AssertExpectations(t)
	})
}

func TestTrackerService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc := NewTrackerService(new(sheetsMocks.MockClient), new(linkMocks.MockStore), nil, nil, 0)
		_, err := svc.Export(ctx)
		assert.ErrorIs(t, err, ErrExportDisabled)
	})

	t.Run("uploads snapshot and presigns", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		mObj := new(storeMocks.MockStorage)
		svc := NewTrackerService(mClient, mStore, nil, mObj, 15*time.Minute)

		stubSheet(mStore, mClient, defaultRows())

		mObj.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "exports/") && strings.HasSuffix(key, ".xlsx")
		}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.ContentType == xlsxContentType && opt.Size > 0
		})).Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			return storage.ObjectInfo{Key: key, Size: opt.Size}
		}, nil)
		mObj.On("PresignGet", ctx, mock.Anything, 15*time.Minute).
			Return("https://minio.example/presigned", nil)

		res, err := svc.Export(ctx)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.Key, "exports/"))
		assert.Equal(t, "https://minio.example/presigned", res.URL)
		assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), res.ExpiresAt, 5*time.Second)
		mObj.AssertExpectations(t)
	})

	t.Run("upload error", func(t *testing.T) {
		mClient := new(sheetsMocks.MockClient)
		mStore := new(linkMocks.MockStore)
		mObj := new(storeMocks.MockStorage)
		svc := NewTrackerService(mClient, mStore, nil, mObj, time.Minute)

		stubSheet(mStore, mClient, defaultRows())
		mObj.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("bucket gone"))

		_, err := svc.Export(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "upload export")
	})
}
