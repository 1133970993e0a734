package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_API_URL", server.URL)

	client, err := NewClient()
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresSecret(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	_, err := NewClient()
	require.Error(t, err)
}

func TestCreateSession(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)

		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "sk_test_123", user)

		require.NoError(t, r.ParseForm())
		require.Equal(t, "payment", r.PostForm.Get("mode"))
		require.Equal(t, "Book", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		require.Equal(t, "1000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		require.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))

		fmt.Fprint(w, `{"id":"cs_test_1","url":"https://pay.example/cs_test_1"}`)
	})

	session, err := client.CreateSession(context.Background(),
		[]LineItem{{Name: "Book", UnitAmount: 1000, Quantity: 2}},
		"https://shop.example/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		"https://shop.example/checkout/cancel",
	)
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", session.ID)
	require.Equal(t, "https://pay.example/cs_test_1", session.URL)
}

func TestCreateSessionSurfacesAPIError(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"missing line items"}}`)
	})

	_, err := client.CreateSession(context.Background(), nil, "s", "c")
	require.ErrorContains(t, err, "missing line items")
}

func TestVerifySession(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		fmt.Fprint(w, `{"id":"cs_test_1","payment_status":"paid"}`)
	})

	paid, err := client.VerifySession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	require.True(t, paid)
}

func TestVerifySessionUnpaid(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"cs_test_1","payment_status":"unpaid"}`)
	})

	paid, err := client.VerifySession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	require.False(t, paid)
}
