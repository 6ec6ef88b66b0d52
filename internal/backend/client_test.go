package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"fitfuzz-storefront/internal/auth"
	"fitfuzz-storefront/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

const baseURL = "http://backend.test"

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newClient(rt http.RoundTripper) *Client {
	c := NewClient(baseURL+"/", 5*time.Second)
	c.httpClient.Transport = rt
	return c
}

func TestClient_Colors(t *testing.T) {
	c := newClient(MockRoundTripper(func(req *http.Request) *http.Response {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, baseURL+"/api/colors", req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		return respond(http.StatusOK, `[{"id":1,"name":"Red"},{"id":"2","name":"Blue"}]`)
	}))

	colors, err := c.Colors(context.Background())
	require.NoError(t, err)
	require.Len(t, colors, 2)
	assert.Equal(t, int64(2), colors[1].ID.Value)
	assert.Equal(t, "Blue", colors[1].Name)
}

func TestClient_ForwardsTokenAndRequestID(t *testing.T) {
	c := newClient(MockRoundTripper(func(req *http.Request) *http.Response {
		assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
		assert.Equal(t, "rid-9", req.Header.Get(logger.HeaderRequestID))
		return respond(http.StatusOK, `[]`)
	}))

	ctx := auth.WithAccessToken(context.Background(), "tok-1")
	ctx = logger.WithRequestID(ctx, "rid-9")

	_, err := c.Sizes(ctx)
	require.NoError(t, err)
}

func TestClient_LatestLocation(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, baseURL+"/api/locations/latest/7", req.URL.String())
			return respond(http.StatusOK, `{"id":3,"province":"Bagmati","district":"Kathmandu","village":"Thamel","phone":"98","delivery_charge":150}`)
		}))

		loc, err := c.LatestLocation(context.Background(), 7)
		require.NoError(t, err)
		require.NotNil(t, loc)
		assert.Equal(t, int64(3), loc.ID.Value)
		assert.True(t, loc.DeliveryCharge.Decimal().Equal(decimal.NewFromInt(150)))
	})

	t.Run("Null", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return respond(http.StatusOK, `null`)
		}))
		loc, err := c.LatestLocation(context.Background(), 7)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})

	t.Run("NotFound", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return respond(http.StatusNotFound, `{"error":"no location"}`)
		}))
		loc, err := c.LatestLocation(context.Background(), 7)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})
}

func TestClient_LocationLookups(t *testing.T) {
	c := newClient(MockRoundTripper(func(req *http.Request) *http.Response {
		switch req.URL.EscapedPath() {
		case "/api/locations/provinces":
			return respond(http.StatusOK, `["Bagmati","Gandaki"]`)
		case "/api/locations/districts/Bagmati":
			return respond(http.StatusOK, `["Kathmandu"]`)
		case "/api/locations/villages/Bagmati/Kathmandu%20Valley":
			return respond(http.StatusOK, `[{"village":"Thamel","charge":"150.50"}]`)
		}
		t.Errorf("unexpected path %s", req.URL.EscapedPath())
		return respond(http.StatusNotFound, ``)
	}))
	ctx := context.Background()

	provinces, err := c.Provinces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bagmati", "Gandaki"}, provinces)

	districts, err := c.Districts(ctx, "Bagmati")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kathmandu"}, districts)

	villages, err := c.Villages(ctx, "Bagmati", "Kathmandu Valley")
	require.NoError(t, err)
	require.Len(t, villages, 1)
	assert.Equal(t, "150.5", villages[0].Charge.Decimal().String())
}

func TestClient_SaveLocation(t *testing.T) {
	c := newClient(MockRoundTripper(func(req *http.Request) *http.Response {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		body, _ := io.ReadAll(req.Body)
		assert.JSONEq(t, `{"user_id":7,"province":"P","district":"D","village":"V","charge":150,"phone":"98"}`, string(body))
		return respond(http.StatusCreated, `{"location":{"id":11,"province":"P","district":"D","village":"V","phone":"98","delivery_charge":150}}`)
	}))

	loc, err := c.SaveLocation(context.Background(), SaveLocationRequest{
		UserID: 7, Province: "P", District: "D", Village: "V",
		Charge: NewAmount(decimal.NewFromInt(150)), Phone: "98",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), loc.ID.Value)
}

func TestClient_Checkout(t *testing.T) {
	color, size := int64(1), int64(2)
	req := CheckoutRequest{
		UserID:     7,
		LocationID: 3,
		Items: []CheckoutItem{{
			ProductID: 10, Quantity: 2, Price: NewAmount(decimal.NewFromInt(500)),
			SellerID: 4, ColorID: &color, SizeID: &size,
		}},
		Total:         NewAmount(decimal.NewFromInt(1150)),
		PaymentMethod: "cod",
	}

	t.Run("Success", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, baseURL+"/api/checkout", r.URL.String())
			assert.Equal(t, "key-1", r.Header.Get(HeaderIdempotencyKey))

			var got map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, float64(1150), got["total"])
			assert.Equal(t, "cod", got["payment_method"])
			return respond(http.StatusOK, `{"success":true,"tracking_id":"TRK-1"}`)
		}))

		resp, err := c.Checkout(context.Background(), req, "key-1")
		require.NoError(t, err)
		assert.Equal(t, "TRK-1", resp.TrackingID)
	})

	t.Run("SuccessFalse", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
			return respond(http.StatusOK, `{"success":false,"error":"Out of stock"}`)
		}))

		_, err := c.Checkout(context.Background(), req, "")
		var be *BackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "Out of stock", be.Message)
	})

	t.Run("ErrorPrecedence", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
			return respond(http.StatusBadRequest, `{"message":"m","error":"e","details":"d"}`)
		}))

		_, err := c.Checkout(context.Background(), req, "")
		assert.Equal(t, "d", UserMessage(err, "fallback"))
	})

	t.Run("NetworkError", func(t *testing.T) {
		c := newClient(MockRoundTripperWithError(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}))

		_, err := c.Checkout(context.Background(), req, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, "fallback", UserMessage(err, "fallback"))
	})
}

func TestClient_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, baseURL+"/api/auth/login", r.URL.String())
			return respond(http.StatusOK, `{"user":{"id":"7","email":"a@b.c","role":"customer"},"token":"jwt"}`)
		}))

		u, err := c.Login(context.Background(), "a@b.c", "pw")
		require.NoError(t, err)
		assert.Equal(t, int64(7), u.ID.Value)
		assert.Equal(t, "jwt", u.Token)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
			return respond(http.StatusUnauthorized, `{"error":"Invalid credentials"}`)
		}))

		_, err := c.Login(context.Background(), "a@b.c", "bad")
		var be *BackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, http.StatusUnauthorized, be.Status)
		assert.Equal(t, "Invalid credentials", be.Message)
	})

	t.Run("MissingUser", func(t *testing.T) {
		c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
			return respond(http.StatusOK, `{}`)
		}))

		_, err := c.Login(context.Background(), "a@b.c", "pw")
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})
}

func TestClient_SellerLogin(t *testing.T) {
	c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"storeName":"Atelier","email":"s@x.y","password":"pw"}`, string(body))
		return respond(http.StatusOK, `{"seller":{"seller_id":5,"storeName":"Atelier","email":"s@x.y"}}`)
	}))

	s, err := c.SellerLogin(context.Background(), "Atelier", "s@x.y", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.SellerID.Value)
}

func TestClient_Orders(t *testing.T) {
	c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
		switch r.URL.Path {
		case "/api/orders/my-orders/7":
			return respond(http.StatusOK, `[{"order_id":1,"total":1150,"status":"pending","tracking_id":"TRK","delivery":{"delivery_charge":150},"items":[{"order_item_id":9,"product_id":10,"quantity":2,"price":500,"status":"shipped"}]}]`)
		case "/api/orders/return-products/7":
			return respond(http.StatusOK, `[{"id":1,"order_item_id":9,"reason":"Too small","status":"pending"}]`)
		case "/api/orders/mark-delivered":
			assert.Equal(t, http.MethodPut, r.Method)
			return respond(http.StatusOK, `{"message":"ok"}`)
		case "/api/orders/return-product":
			assert.Equal(t, http.MethodPost, r.Method)
			return respond(http.StatusCreated, ``)
		}
		return respond(http.StatusNotFound, ``)
	}))
	ctx := context.Background()

	orders, err := c.MyOrders(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(9), orders[0].Items[0].OrderItemID.Value)

	returns, err := c.ReturnProducts(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Too small", returns[0].Reason)

	require.NoError(t, c.MarkDelivered(ctx, MarkDeliveredRequest{OrderID: 1, ProductID: 10}))
	require.NoError(t, c.ReturnProduct(ctx, ReturnProductRequest{OrderItemID: 9, UserID: 7, Reason: "Too small"}))
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
		return respond(http.StatusOK, `{invalid-json`)
	}))

	_, err := c.Colors(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestClient_ProductOptions(t *testing.T) {
	c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
		switch r.URL.Path {
		case "/api/product_colors/12":
			return respond(http.StatusOK, `[{"color_id":"3","color_name":"Olive"},{"id":4,"name":"Sand"}]`)
		case "/api/product_sizes/12":
			return respond(http.StatusOK, `[{"size_id":2,"size_name":"M"}]`)
		}
		return respond(http.StatusNotFound, ``)
	}))
	ctx := context.Background()

	colors, err := c.ProductColors(ctx, 12)
	require.NoError(t, err)
	require.Len(t, colors, 2)
	assert.Equal(t, int64(3), colors[0].ID.Value)
	assert.Equal(t, "Olive", colors[0].Name)
	assert.Equal(t, "Sand", colors[1].Name)

	sizes, err := c.ProductSizes(ctx, 12)
	require.NoError(t, err)
	require.Len(t, sizes, 1)
	assert.Equal(t, int64(2), sizes[0].ID.Value)
	assert.Equal(t, "M", sizes[0].Name)
}

func TestClient_Feedback(t *testing.T) {
	c := newClient(MockRoundTripper(func(r *http.Request) *http.Response {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/feedback/product/12":
			return respond(http.StatusOK, `{"feedbacks":[{"id":1,"user_id":"7","rating":4,"comment":"Fits well"}],"averageRating":4.5,"reviewCount":2}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/feedback":
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"product_id":12,"user_id":7,"rating":5,"comment":"Great","images":[]}`, string(body))
			return respond(http.StatusCreated, `{"message":"ok"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/feedback/1":
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"user_id":7}`, string(body))
			return respond(http.StatusOK, ``)
		}
		return respond(http.StatusNotFound, ``)
	}))
	ctx := context.Background()

	fb, err := c.ProductFeedback(ctx, 12)
	require.NoError(t, err)
	require.Len(t, fb.Feedbacks, 1)
	assert.Equal(t, int64(7), fb.Feedbacks[0].UserID.Value)
	assert.Equal(t, "4.5", fb.AverageRating.Decimal().String())
	assert.Equal(t, 2, fb.ReviewCount)

	require.NoError(t, c.SubmitFeedback(ctx, SubmitFeedbackRequest{ProductID: 12, UserID: 7, Rating: 5, Comment: "Great"}))
	require.NoError(t, c.DeleteFeedback(ctx, 1, 7))
}
