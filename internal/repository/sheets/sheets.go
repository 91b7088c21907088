package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"implantOrderBot/internal/domain/models"
	"implantOrderBot/internal/pkg/logger/sl"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

type Config struct {
	SpreadsheetID   string        `yaml:"spreadsheet_id" env:"SPREADSHEET_ID" env-required:"true"`
	WorksheetID     int64         `yaml:"worksheet_id" env:"WORKSHEET_ID" env-default:"0"`
	WorksheetName   string        `yaml:"worksheet_name" env:"WORKSHEET_NAME"`
	CredentialsJSON string        `yaml:"credentials_json" env:"GOOGLE_CREDENTIALS_JSON"`
	CredentialsFile string        `yaml:"credentials_file" env:"GOOGLE_CREDENTIALS_FILE" env-default:"credentials.json"`
	Timeout         time.Duration `yaml:"timeout" env:"SHEETS_TIMEOUT" env-default:"15s"`
}

// Client is the part of the Sheets API the repository needs.
type Client interface {
	SheetTitle(ctx context.Context, spreadsheetID string, sheetID int64) (string, error)
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

// Первая строка листа всегда остается под заголовки
const firstDataRow = 2

// NewService builds a Sheets service. Credentials are taken from the inline
// JSON first, then from the credentials file, then from application defaults.
func NewService(ctx context.Context, log *slog.Logger, cfg Config) (*gsheets.Service, error) {
	const op = "sheets.NewService"

	creds, err := findCredentials(ctx, log, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc, err := gsheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return svc, nil
}

func findCredentials(ctx context.Context, log *slog.Logger, cfg Config) (*google.Credentials, error) {
	if cfg.CredentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), gsheets.SpreadsheetsScope)
		if err == nil {
			return creds, nil
		}
		log.Warn("invalid inline credentials, falling back to credentials file", sl.Err(err))
	}

	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			log.Warn("credentials file unavailable", slog.String("path", cfg.CredentialsFile), sl.Err(err))
		} else {
			creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
			if err == nil {
				return creds, nil
			}
			log.Warn("invalid credentials file", slog.String("path", cfg.CredentialsFile), sl.Err(err))
		}
	}

	creds, err := google.FindDefaultCredentials(ctx, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("no usable google credentials: %w", err)
	}

	return creds, nil
}

// GoogleClient adapts *sheets.Service to Client.
type GoogleClient struct {
	svc *gsheets.Service
}

func NewGoogleClient(svc *gsheets.Service) *GoogleClient {
	return &GoogleClient{svc: svc}
}

func (c *GoogleClient) SheetTitle(ctx context.Context, spreadsheetID string, sheetID int64) (string, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil && sheet.Properties.SheetId == sheetID {
			return sheet.Properties.Title, nil
		}
	}

	return "", fmt.Errorf("%w: id %d", ErrWorksheetNotFound, sheetID)
}

func (c *GoogleClient) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// AppendValues writes rows starting at rng. INSERT_ROWS grows the grid
// when a form-response sheet has no empty rows left.
func (c *GoogleClient) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// Repository appends orders to one worksheet.
type Repository struct {
	log           *slog.Logger
	client        Client
	spreadsheetID string
	title         string
	timeout       time.Duration

	mu      sync.Mutex
	headers []string
}

// New resolves the worksheet and reads its header row. Any error here means
// the spreadsheet is unreachable and the bot should not start.
func New(ctx context.Context, log *slog.Logger, client Client, cfg Config) (*Repository, error) {
	const op = "sheets.New"

	title := cfg.WorksheetName
	if title == "" {
		var err error
		title, err = client.SheetTitle(ctx, cfg.SpreadsheetID, cfg.WorksheetID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	r := &Repository{
		log:           log,
		client:        client,
		spreadsheetID: cfg.SpreadsheetID,
		title:         title,
		timeout:       cfg.Timeout,
	}

	headers, err := r.Headers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("spreadsheet connected",
		slog.String("worksheet", title),
		slog.Int("columns", len(headers)),
	)

	return r, nil
}

// Title returns the resolved worksheet name.
func (r *Repository) Title() string {
	return r.title
}

// Headers returns the cached header row, reading it when the cache is empty.
func (r *Repository) Headers(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.headers) > 0 {
		return r.headers, nil
	}

	values, err := r.client.GetValues(ctx, r.spreadsheetID, r.sheetRange("1:1"))
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	var headers []string
	if len(values) > 0 {
		for _, v := range values[0] {
			headers = append(headers, strings.TrimSpace(fmt.Sprint(v)))
		}
	}

	// Пустая строка заголовков не кэшируется: ее могут заполнить позже
	if len(headers) > 0 {
		r.headers = headers
	}

	return headers, nil
}

// SaveOrder writes the order into the first row after the existing data.
func (r *Repository) SaveOrder(ctx context.Context, order models.Order) error {
	const op = "sheets.Repository.SaveOrder"

	log := r.log.With(slog.String("op", op), slog.String("order_id", order.ID.String()))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	headers, err := r.Headers(ctx)
	if err != nil {
		// Без заголовков строка уходит в фиксированном порядке
		log.Warn("header row unavailable, using positional layout", sl.Err(err))
		headers = nil
	}

	grid, err := r.client.GetValues(ctx, r.spreadsheetID, r.sheetRange(""))
	if err != nil {
		return fmt.Errorf("%s: failed to read rows: %w", op, err)
	}

	next := max(len(grid)+1, firstDataRow)
	row := BuildRow(headers, order)

	if err := r.client.AppendValues(ctx, r.spreadsheetID, r.sheetRange(fmt.Sprintf("A%d", next)), [][]interface{}{row}); err != nil {
		return fmt.Errorf("%s: failed to write row %d: %w", op, next, err)
	}

	log.Info("order saved", slog.Int("row", next))

	return nil
}

func (r *Repository) sheetRange(cells string) string {
	quoted := "'" + strings.ReplaceAll(r.title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}
