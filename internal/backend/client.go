// Package backend is the HTTP client for the fitfuzz storefront REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fitfuzz-storefront/internal/auth"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/metrics"

	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	maxResponseBytes     = 4 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		logger.L().Warn("backend base URL is empty")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ----------------- Master data -----------------

func (c *Client) Colors(ctx context.Context) ([]Option, error) {
	var out []Option
	if err := c.do(ctx, "colors", http.MethodGet, "/api/colors", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Sizes(ctx context.Context) ([]Option, error) {
	var out []Option
	if err := c.do(ctx, "sizes", http.MethodGet, "/api/sizes", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductColors lists the colors productID is offered in.
func (c *Client) ProductColors(ctx context.Context, productID int64) ([]Option, error) {
	return c.productOptions(ctx, "product_colors", "/api/product_colors/", productID)
}

// ProductSizes lists the sizes productID is offered in.
func (c *Client) ProductSizes(ctx context.Context, productID int64) ([]Option, error) {
	return c.productOptions(ctx, "product_sizes", "/api/product_sizes/", productID)
}

func (c *Client) productOptions(ctx context.Context, endpoint, prefix string, productID int64) ([]Option, error) {
	var raw []productOption
	if err := c.do(ctx, endpoint, http.MethodGet, prefix+strconv.FormatInt(productID, 10), nil, &raw, nil); err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.option())
	}
	return out, nil
}

// ----------------- Locations -----------------

// LatestLocation returns nil when the user has never saved a location.
func (c *Client) LatestLocation(ctx context.Context, userID int64) (*Location, error) {
	var out *Location
	err := c.do(ctx, "latest_location", http.MethodGet,
		"/api/locations/latest/"+strconv.FormatInt(userID, 10), nil, &out, nil)

	var be *BackendError
	if errors.As(err, &be) && be.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil || !out.ID.Valid {
		return nil, nil
	}
	return out, nil
}

func (c *Client) Provinces(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, "provinces", http.MethodGet, "/api/locations/provinces", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Districts(ctx context.Context, province string) ([]string, error) {
	var out []string
	path := "/api/locations/districts/" + url.PathEscape(province)
	if err := c.do(ctx, "districts", http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Villages(ctx context.Context, province, district string) ([]Village, error) {
	var out []Village
	path := "/api/locations/villages/" + url.PathEscape(province) + "/" + url.PathEscape(district)
	if err := c.do(ctx, "villages", http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SaveLocation(ctx context.Context, req SaveLocationRequest) (*Location, error) {
	var out struct {
		Location *Location `json:"location"`
	}
	if err := c.do(ctx, "save_location", http.MethodPost, "/api/locations", req, &out, nil); err != nil {
		return nil, err
	}
	if out.Location == nil {
		return nil, &BackendError{Endpoint: "save_location", Err: ErrUnexpectedResponse}
	}
	return out.Location, nil
}

// ----------------- Checkout -----------------

// Checkout places an order. A response with success=false is returned as a
// *BackendError carrying the backend's error text.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest, idempotencyKey string) (*CheckoutResponse, error) {
	hdr := http.Header{}
	if idempotencyKey != "" {
		hdr.Set(HeaderIdempotencyKey, idempotencyKey)
	}

	var out CheckoutResponse
	if err := c.do(ctx, "checkout", http.MethodPost, "/api/checkout", req, &out, hdr); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &BackendError{
			Endpoint: "checkout",
			Status:   http.StatusOK,
			Message:  strings.TrimSpace(out.Error),
		}
	}
	return &out, nil
}

// ----------------- Auth -----------------

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	in := map[string]string{"email": email, "password": password}

	var out struct {
		User  *User  `json:"user"`
		Token string `json:"token"`
	}
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", in, &out, nil); err != nil {
		return nil, err
	}
	if out.User == nil || !out.User.ID.Valid {
		return nil, &BackendError{Endpoint: "login", Err: ErrUnexpectedResponse}
	}
	if out.User.Token == "" {
		out.User.Token = out.Token
	}
	return out.User, nil
}

func (c *Client) SellerLogin(ctx context.Context, storeName, email, password string) (*Seller, error) {
	in := map[string]string{"storeName": storeName, "email": email, "password": password}

	var out struct {
		Seller *Seller `json:"seller"`
		Token  string  `json:"token"`
	}
	if err := c.do(ctx, "seller_login", http.MethodPost, "/api/auth/seller/login", in, &out, nil); err != nil {
		return nil, err
	}
	if out.Seller == nil || !out.Seller.SellerID.Valid {
		return nil, &BackendError{Endpoint: "seller_login", Err: ErrUnexpectedResponse}
	}
	if out.Seller.Token == "" {
		out.Seller.Token = out.Token
	}
	return out.Seller, nil
}

// ----------------- Orders -----------------

func (c *Client) MyOrders(ctx context.Context, userID int64) ([]Order, error) {
	var out []Order
	path := "/api/orders/my-orders/" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, "my_orders", http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReturnProducts(ctx context.Context, userID int64) ([]ReturnItem, error) {
	var out []ReturnItem
	path := "/api/orders/return-products/" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, "return_products", http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkDelivered(ctx context.Context, req MarkDeliveredRequest) error {
	return c.do(ctx, "mark_delivered", http.MethodPut, "/api/orders/mark-delivered", req, nil, nil)
}

func (c *Client) ReturnProduct(ctx context.Context, req ReturnProductRequest) error {
	return c.do(ctx, "return_product", http.MethodPost, "/api/orders/return-product", req, nil, nil)
}

// ----------------- Feedback -----------------

func (c *Client) ProductFeedback(ctx context.Context, productID int64) (*ProductFeedback, error) {
	var out ProductFeedback
	path := "/api/feedback/product/" + strconv.FormatInt(productID, 10)
	if err := c.do(ctx, "product_feedback", http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) error {
	if req.Images == nil {
		req.Images = []string{}
	}
	return c.do(ctx, "submit_feedback", http.MethodPost, "/api/feedback", req, nil, nil)
}

// DeleteFeedback removes a review. The backend only lets its author do so.
func (c *Client) DeleteFeedback(ctx context.Context, feedbackID, userID int64) error {
	in := map[string]int64{"user_id": userID}
	path := "/api/feedback/" + strconv.FormatInt(feedbackID, 10)
	return c.do(ctx, "delete_feedback", http.MethodDelete, path, in, nil, nil)
}

// ----------------- Transport -----------------

// do sends one JSON request and decodes a 2xx body into out. Every failure
// comes back as a *BackendError.
func (c *Client) do(
	ctx context.Context,
	endpoint, method, path string,
	in, out any,
	hdr http.Header,
) error {
	log := logger.FromCtx(ctx).With(
		zap.String("client", "backend"),
		zap.String("endpoint", endpoint),
		zap.String("method", method),
		zap.String("path", path),
	)

	timer := metrics.StartTimer()
	status := "error"
	defer func() { timer.ObserveBackend(endpoint, status) }()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			log.Error("failed to marshal backend request", zap.Error(err))
			return &BackendError{Endpoint: endpoint, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("failed creating backend request", zap.Error(err))
		return &BackendError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := auth.AccessTokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid := logger.RequestIDFrom(ctx); rid != "" {
		req.Header.Set(logger.HeaderRequestID, rid)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("backend request failed", zap.Error(err))
		return &BackendError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Error("failed to read backend response", zap.Error(err))
		return &BackendError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := messageFromBody(respBody)
		log.Warn("backend returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &BackendError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Error("failed to decode backend response",
			zap.Error(err),
			zap.ByteString("response", respBody),
		)
		return &BackendError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%w: %v", ErrUnexpectedResponse, err),
		}
	}
	return nil
}
