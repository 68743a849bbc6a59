// Package google wraps the Google Sheets values API used to publish the
// per-shop counts report.
package google

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputOption makes Sheets parse numbers and formulas as if typed.
const valueInputOption = "USER_ENTERED"

// Client performs Google Sheets value operations.
type Client interface {
	UpdateValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) (*UpdateResult, error)
}

// UpdateResult summarizes a values.update response.
type UpdateResult struct {
	UpdatedRange string
	UpdatedRows  int64
	UpdatedCells int64
}

// Option configures the client.
type Option func(*sheetsClient)

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(url string) Option {
	return func(c *sheetsClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client. The client is used as is,
// without adding credentials.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *sheetsClient) {
		c.http = hc
	}
}

// WithCredentialsFile authenticates with a service-account JSON key file.
func WithCredentialsFile(path string) Option {
	return func(c *sheetsClient) {
		c.credentialsFile = path
	}
}

type sheetsClient struct {
	baseURL         string
	http            *http.Client
	credentialsFile string
	svc             *sheets.Service
}

// NewClient creates a Google Sheets client. Without options it uses
// application default credentials.
func NewClient(ctx context.Context, opts ...Option) (Client, error) {
	c := &sheetsClient{}
	for _, o := range opts {
		o(c)
	}

	var clientOpts []option.ClientOption
	if c.baseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(c.baseURL))
	}
	if c.http != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(c.http))
	}
	if c.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(c.credentialsFile))
	}

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "google: create sheets service")
	}
	c.svc = svc
	return c, nil
}

func (c *sheetsClient) UpdateValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) (*UpdateResult, error) {
	vr := &sheets.ValueRange{Range: rng, Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, eris.Wrapf(err, "google: update values %s", rng)
	}

	return &UpdateResult{
		UpdatedRange: resp.UpdatedRange,
		UpdatedRows:  resp.UpdatedRows,
		UpdatedCells: resp.UpdatedCells,
	}, nil
}
