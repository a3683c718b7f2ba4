package symbols

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/thetatiger/fyers-go/utils"
)

// MasterURL is the published NSE F&O instrument master file
const MasterURL = "https://public.fyers.in/sym_details/NSE_FO.csv"

// Source downloads and parses the instrument master file.
type Source struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// SourceOption is a functional option for configuring the master source
type SourceOption func(*Source)

// WithURL overrides the master file URL
func WithURL(url string) SourceOption {
	return func(s *Source) {
		s.url = url
	}
}

// WithHTTPClient sets a custom HTTP client for the download
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *Source) {
		s.httpClient = client
	}
}

// WithLogger sets a zerolog logger
func WithLogger(logger zerolog.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource creates a master source with default settings
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		url:        MasterURL,
		httpClient: utils.BulkDownloadHTTPClient(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load downloads the master file and builds the symbol index. Any parse error
// aborts the load: a partially-built index would silently resolve to wrong or
// missing contracts.
func (s *Source) Load(ctx context.Context) (*Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create master request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download instrument master: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instrument master download returned status %d", resp.StatusCode)
	}

	instruments, err := ParseMaster(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("instruments", len(instruments)).Str("url", s.url).Msg("loaded instrument master")
	return NewIndex(instruments, s.logger), nil
}

// ParseMaster parses the comma-delimited master table. The file has fixed
// positional columns and no header row.
func ParseMaster(r io.Reader) ([]Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var instruments []Instrument
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read master record: %w", err)
		}
		line++

		inst, err := parseInstrument(record)
		if err != nil {
			return nil, fmt.Errorf("master line %d: %w", line, err)
		}
		instruments = append(instruments, inst)
	}

	if len(instruments) == 0 {
		return nil, fmt.Errorf("instrument master is empty")
	}
	return instruments, nil
}
