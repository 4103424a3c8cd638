// Package sheets implements the remote tabular store client.
//
// The remote store is a spreadsheet exposed through the Google Sheets
// values API: row-oriented tables addressed by (sheet name, A1 range),
// no transactions, no server-side querying. The client translates row
// arrays to and from the wire format, classifies failures into
// unavailable (transport) versus rejected (non-2xx), and hands failed
// writes to an offline queue so they can be replayed later.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production Sheets values API endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// OpKind identifies the kind of a queued write intent.
type OpKind string

const (
	// OpAppend adds rows after the last row of a sheet.
	OpAppend OpKind = "append"
	// OpWrite overwrites a positional range.
	OpWrite OpKind = "write"
)

// QueuedOp is a write intent handed to the offline queue when the
// remote store is unavailable.
type QueuedOp struct {
	Kind  OpKind
	Sheet string
	Range string // empty for append
	Rows  [][]string
}

// Queue receives write intents that failed due to connectivity.
// Implemented by oplog.Log.
type Queue interface {
	Enqueue(ctx context.Context, op QueuedOp) error
}

// Client executes read, write, and append operations against one
// spreadsheet. Every call requires a valid bearer credential from the
// token source; a missing or expired credential is a hard precondition
// failure (rejected), never queued.
//
// Reads degrade gracefully: the last successful whole-sheet read is
// kept as a snapshot and returned when a later read fails.
type Client struct {
	baseURL       string
	spreadsheetID string
	tokens        oauth2.TokenSource
	http          *http.Client
	queue         Queue

	mu        sync.Mutex
	snapshots map[string][][]string // sheet name -> last good whole-sheet read
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithQueue sets the offline queue for unavailable writes.
func WithQueue(q Queue) Option {
	return func(c *Client) { c.queue = q }
}

// NewClient creates a client for the given spreadsheet.
func NewClient(spreadsheetID string, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		spreadsheetID: spreadsheetID,
		tokens:        tokens,
		http:          http.DefaultClient,
		snapshots:     make(map[string][][]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Direct returns a view of the client with no offline queue attached.
// The drain path uses it so a replay that fails again is retried on the
// next drain instead of being enqueued a second time.
func (c *Client) Direct() *Client {
	return &Client{
		baseURL:       c.baseURL,
		spreadsheetID: c.spreadsheetID,
		tokens:        c.tokens,
		http:          c.http,
		snapshots:     make(map[string][][]string),
	}
}

// Read returns the rows of a sheet, or of a range within it when rng is
// non-empty. On failure, a previously cached whole-sheet snapshot is
// returned instead when one exists; otherwise the error propagates.
func (c *Client) Read(ctx context.Context, sheet, rng string) ([][]string, error) {
	ref := sheet
	if rng != "" {
		ref = sheet + "!" + rng
	}
	u := fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(ref))

	rows, err := c.fetchValues(ctx, "read", sheet, rng, u)
	if err != nil {
		if rng == "" {
			if snap, ok := c.snapshot(sheet); ok {
				slog.Warn("read failed, serving cached snapshot",
					"sheet", sheet, "rows", len(snap), "error", err)
				return snap, nil
			}
		}
		return nil, err
	}

	if rng == "" {
		c.storeSnapshot(sheet, rows)
	}
	return rows, nil
}

// Write overwrites the given A1 range with rows. On transport failure
// the intent is enqueued for later replay and the error is still
// returned, so the caller can report non-durability.
func (c *Client) Write(ctx context.Context, sheet, rng string, rows [][]string) error {
	ref := sheet + "!" + rng
	u := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW",
		c.baseURL, c.spreadsheetID, url.PathEscape(ref))

	err := c.sendValues(ctx, http.MethodPut, "write", sheet, rng, u, rows)
	if err != nil && IsUnavailable(err) {
		c.enqueue(ctx, QueuedOp{Kind: OpWrite, Sheet: sheet, Range: rng, Rows: rows})
	}
	return err
}

// Append adds rows after the last row of the sheet. On transport
// failure the intent is enqueued for later replay and the error is
// still returned.
func (c *Client) Append(ctx context.Context, sheet string, rows [][]string) error {
	u := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW",
		c.baseURL, c.spreadsheetID, url.PathEscape(sheet+":append"))

	err := c.sendValues(ctx, http.MethodPost, "append", sheet, "", u, rows)
	if err != nil && IsUnavailable(err) {
		c.enqueue(ctx, QueuedOp{Kind: OpAppend, Sheet: sheet, Rows: rows})
	}
	return err
}

// Snapshot returns the last successful whole-sheet read, if any.
func (c *Client) Snapshot(sheet string) ([][]string, bool) {
	return c.snapshot(sheet)
}

func (c *Client) enqueue(ctx context.Context, op QueuedOp) {
	if c.queue == nil {
		return
	}
	if qerr := c.queue.Enqueue(ctx, op); qerr != nil {
		slog.Error("failed to enqueue offline operation",
			"kind", op.Kind, "sheet", op.Sheet, "error", qerr)
		return
	}
	slog.Info("queued offline operation", "kind", op.Kind, "sheet", op.Sheet)
}

func (c *Client) snapshot(sheet string) ([][]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshots[sheet]
	return snap, ok
}

func (c *Client) storeSnapshot(sheet string, rows [][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[sheet] = rows
}

// valuesBody is the wire format for reads and writes: a row-major
// array of cell values under a "values" key.
type valuesBody struct {
	Values [][]any `json:"values"`
}

func (c *Client) fetchValues(ctx context.Context, op, sheet, rng, u string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build read request: %w", err)
	}
	resp, err := c.do(op, sheet, rng, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body valuesBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, rejected(op, sheet, rng, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return coerceRows(body.Values), nil
}

func (c *Client) sendValues(ctx context.Context, method, op, sheet, rng, u string, rows [][]string) error {
	payload, err := json.Marshal(valuesBody{Values: anyRows(rows)})
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(op, sheet, rng, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// do authorizes and executes a request, classifying failures.
// Token acquisition failures are rejected, not unavailable: a missing
// credential will not heal by replaying the operation later.
func (c *Client) do(op, sheet, rng string, req *http.Request) (*http.Response, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, rejected(op, sheet, rng, 0, fmt.Errorf("credential: %w", err))
	}
	tok.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(op, sheet, rng, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, rejected(op, sheet, rng, resp.StatusCode, nil)
	}
	return resp, nil
}

// coerceRows converts wire cells to strings. The values API renders
// formatted values, but numeric cells can still arrive as JSON numbers
// depending on the sheet's formatting.
func coerceRows(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, raw := range values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			switch v := cell.(type) {
			case string:
				row[j] = v
			case float64:
				row[j] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				row[j] = strconv.FormatBool(v)
			case nil:
				row[j] = ""
			default:
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows
}

func anyRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		out[i] = cells
	}
	return out
}
