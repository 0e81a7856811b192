package sheets

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// SpreadsheetInfo is the live metadata of a spreadsheet: its title and the
// title of its first tab, which is the only tab this service operates on.
type SpreadsheetInfo struct {
	ID         string
	Title      string
	SheetTitle string
}

// Client is the minimal Sheets API surface the tracker needs.
type Client interface {
	// Describe fetches the spreadsheet title and the first tab's title.
	Describe(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error)
	// ReadRows fetches every populated row of the named tab.
	ReadRows(ctx context.Context, spreadsheetID, sheetTitle string) ([][]interface{}, error)
	// UpdateCell writes a single value into the given A1 range.
	UpdateCell(ctx context.Context, spreadsheetID, a1Range string, value interface{}) error
}

type googleClient struct {
	svc        *sheetsapi.Service
	maxRetries int
}

const (
	defaultMaxRetries = 5
	maxBackoff        = 30 * time.Second
)

// NewClient builds a Sheets client authenticated with a service-account
// credentials file.
func NewClient(ctx context.Context, credentialsFile string, maxRetries int) (Client, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("google credentials file is required")
	}
	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &googleClient{svc: svc, maxRetries: maxRetries}, nil
}

func (g *googleClient) Describe(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	var ss *sheetsapi.Spreadsheet
	err := g.withRetry(ctx, "describe", func() error {
		var err error
		ss, err = g.svc.Spreadsheets.Get(spreadsheetID).
			Fields("properties.title", "sheets.properties.title").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(ss.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}
	return &SpreadsheetInfo{
		ID:         spreadsheetID,
		Title:      ss.Properties.Title,
		SheetTitle: ss.Sheets[0].Properties.Title,
	}, nil
}

func (g *googleClient) ReadRows(ctx context.Context, spreadsheetID, sheetTitle string) ([][]interface{}, error) {
	var resp *sheetsapi.ValueRange
	err := g.withRetry(ctx, "read rows", func() error {
		var err error
		resp, err = g.svc.Spreadsheets.Values.Get(spreadsheetID, QuoteSheetTitle(sheetTitle)).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleClient) UpdateCell(ctx context.Context, spreadsheetID, a1Range string, value interface{}) error {
	return g.withRetry(ctx, "update cell", func() error {
		_, err := g.svc.Spreadsheets.Values.Update(
			spreadsheetID,
			a1Range,
			&sheetsapi.ValueRange{Values: [][]interface{}{{value}}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	})
}

// withRetry runs call, backing off exponentially on rate-limit responses.
func (g *googleClient) withRetry(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		err = call()
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return err
		}
		backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		log.WithFields(log.Fields{"op": op, "backoff": backoff.String()}).
			Warn("Rate limited by Google Sheets API, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: gave up after %d retries: %w", op, g.maxRetries, err)
}

// isRateLimited reports whether err is a retryable quota response.
// 403 is only retryable for rate-limit reasons; a plain 403 means the
// service account has no access and retrying cannot help.
func isRateLimited(err error) bool {
	gErr, ok := err.(*googleapi.Error)
	if !ok {
		return false
	}
	if gErr.Code == 429 {
		return true
	}
	if gErr.Code != 403 {
		return false
	}
	for _, e := range gErr.Errors {
		switch e.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}
