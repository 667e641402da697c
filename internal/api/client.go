package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"inventoryclient/internal/logging"
	"inventoryclient/pkg/domain"
)

// ResultType scopes a search to one record variant, or ALL.
type ResultType string

// Accepted resultType values.
const (
	ResultAll       ResultType = "ALL"
	ResultSample    ResultType = "SAMPLE"
	ResultContainer ResultType = "CONTAINER"
	ResultSubSample ResultType = "SUBSAMPLE"
	ResultTemplate  ResultType = "TEMPLATE"
)

// SearchParams configures one search request.
type SearchParams struct {
	Query          string
	ResultType     ResultType
	ParentGlobalID string
	OrderBy        string
	Order          string
	PageSize       int
	PageNumber     int
	DeletedItems   string // "EXCLUDE" (default), "INCLUDE", "DELETED_ONLY"
}

// Client is the inventory REST API surface the stores depend on.
type Client interface {
	Search(ctx context.Context, params SearchParams) (*SearchResultPayload, error)
	ContainerChildren(ctx context.Context, globalID string) ([]RecordPayload, error)
	BulkMove(ctx context.Context, req BulkMoveRequest) (*BulkResultPayload, error)
	ListBaskets(ctx context.Context) ([]BasketPayload, error)
	CreateBasket(ctx context.Context, req CreateBasketRequest) (*BasketPayload, error)
	AddBasketItems(ctx context.Context, basketID int64, req AddBasketItemsRequest) (*BasketPayload, error)
}

// Config carries client construction options.
type Config struct {
	BaseURL string // e.g. https://lims.example.org
	APIKey  string
	Timeout time.Duration
}

const apiPrefix = "/api/inventory/v1"

type client struct {
	log  *logging.Logger
	cfg  Config
	http *http.Client
}

// New constructs a REST client. An empty timeout defaults to 30s; timeouts
// are delegated entirely to the underlying HTTP client, no retry is
// performed here.
func New(log *logging.Logger, cfg Config) (Client, error) {
	if log == nil {
		log = logging.Nop()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, &domain.ValidationError{Field: "baseURL", Reason: "missing server URL"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &client{
		log:  log.With("client", "inventory-api"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *client) Search(ctx context.Context, params SearchParams) (*SearchResultPayload, error) {
	q := url.Values{}
	if params.Query != "" {
		q.Set("query", params.Query)
	}
	if params.ResultType != "" && params.ResultType != ResultAll {
		q.Set("resultType", string(params.ResultType))
	}
	if params.ParentGlobalID != "" {
		q.Set("parentGlobalId", params.ParentGlobalID)
	}
	if params.OrderBy != "" {
		q.Set("orderBy", params.OrderBy)
		if params.Order != "" {
			q.Set("order", params.Order)
		}
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	q.Set("pageNumber", strconv.Itoa(params.PageNumber))
	if params.DeletedItems != "" {
		q.Set("deletedItems", params.DeletedItems)
	}

	var out SearchResultPayload
	if err := c.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) ContainerChildren(ctx context.Context, globalID string) ([]RecordPayload, error) {
	var out SearchResultPayload
	path := "/containers/" + url.PathEscape(globalID) + "/children"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *client) BulkMove(ctx context.Context, req BulkMoveRequest) (*BulkResultPayload, error) {
	var out BulkResultPayload
	if err := c.do(ctx, http.MethodPost, "/bulk", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) ListBaskets(ctx context.Context) ([]BasketPayload, error) {
	var out []BasketPayload
	if err := c.do(ctx, http.MethodGet, "/baskets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) CreateBasket(ctx context.Context, req CreateBasketRequest) (*BasketPayload, error) {
	var out BasketPayload
	if err := c.do(ctx, http.MethodPost, "/baskets", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) AddBasketItems(ctx context.Context, basketID int64, req AddBasketItemsRequest) (*BasketPayload, error) {
	var out BasketPayload
	path := fmt.Sprintf("/baskets/%d/items", basketID)
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one request and decodes the JSON response into out. Non-2xx
// statuses and transport failures map to *domain.NetworkError; undecodable
// bodies map to *domain.ParseError.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	fullURL := c.cfg.BaseURL + apiPrefix + path
	op := method + " " + strings.SplitN(path, "?", 2)[0]

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return &domain.NetworkError{Op: op, URL: fullURL, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("apiKey", c.cfg.APIKey)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "op", op, "requestId", requestID, "err", err)
		return &domain.NetworkError{Op: op, URL: fullURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		c.log.Warn("request rejected", "op", op, "requestId", requestID, "status", resp.StatusCode)
		return &domain.NetworkError{Op: op, URL: fullURL, StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ParseError{Field: op, Got: "response body", Reason: err.Error()}
	}
	c.log.Debug("request ok", "op", op, "requestId", requestID, "elapsed", time.Since(started))
	return nil
}
