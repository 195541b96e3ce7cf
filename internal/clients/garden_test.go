package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/swaptriage/pkg/retrier"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GardenClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewGardenClient(server.URL, 5*time.Second)
	client.backoff = retrier.Backoff{Attempts: 1}
	return client
}

func TestGardenClient_Order(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/orders/ord-1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"status": "Ok",
			"result": {
				"solver_id": "solver-1",
				"created_at": "2026-03-01T12:00:00Z",
				"source_swap": {
					"asset": "bitcoin:BTC",
					"amount": "100000",
					"filled_amount": "100000",
					"initiate_tx_hash": "i1",
					"redeem_tx_hash": "r1",
					"asset_price": 67000.5,
					"initiate_timestamp": "2026-03-01T12:01:00Z"
				},
				"destination_swap": null
			}
		}`))
	})

	order, err := client.Order(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Equal(t, "ord-1", order.OrderID)
	require.Equal(t, "solver-1", order.SolverID)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), order.CreatedAt)
	require.Nil(t, order.Destination)

	src := order.Source
	require.NotNil(t, src)
	require.Equal(t, "100000", src.Amount)
	require.True(t, src.Redeemed())
	require.NotNil(t, src.AssetPrice)
	require.True(t, src.AssetPrice.Equal(decimal.NewFromFloat(67000.5)))
	require.NotNil(t, src.InitiateTimestamp)
	require.Equal(t, time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC), *src.InitiateTimestamp)
}

func TestGardenClient_LegacyOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/id/ord-1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"status": "Ok",
			"result": {
				"create_order": {
					"created_at": "2026-03-01T10:00:00Z",
					"additional_data": {"deadline": 1772366400, "is_blacklisted": true}
				},
				"source_swap": {
					"initiate_timestamp": "2026-03-01T10:30:00Z",
					"required_confirmations": 3,
					"current_confirmations": 2
				}
			}
		}`))
	})

	order, err := client.LegacyOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), order.CreatedAt)
	require.NotNil(t, order.Deadline)
	require.EqualValues(t, 1772366400, *order.Deadline)
	require.True(t, order.IsBlacklisted)
	require.NotNil(t, order.SourceInitiatedAt)
	require.Equal(t, 3, order.RequiredConfirmations)
	require.Equal(t, 2, order.CurrentConfirmations)
}

func TestGardenClient_Liquidity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/liquidity", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"status": "Ok",
			"result": [
				{
					"solver_id": "solver-1",
					"liquidity": [
						{"asset": "ethereum:WBTC", "balance": "5000000", "readable_balance": "0.05 WBTC", "fiat_value": "3350.00"}
					]
				}
			]
		}`))
	})

	solvers, err := client.Liquidity(context.Background())
	require.NoError(t, err)
	require.Len(t, solvers, 1)
	require.Equal(t, "solver-1", solvers[0].SolverID)
	require.Len(t, solvers[0].Liquidity, 1)
	require.Equal(t, "5000000", solvers[0].Liquidity[0].Balance)
	require.Equal(t, "0.05 WBTC", solvers[0].Liquidity[0].ReadableBalance)
}

func TestGardenClient_FiatPrices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/fiat", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"status": "Ok",
			"result": {"bitcoin:BTC": 67000.5, "ethereum:WBTC": 66900, "broken:ASSET": 0}
		}`))
	})

	prices, err := client.FiatPrices(context.Background())
	require.NoError(t, err)

	price, ok := prices.Price("bitcoin:BTC")
	require.True(t, ok)
	require.True(t, price.Equal(decimal.NewFromFloat(67000.5)))

	// non-positive prices are unusable and dropped at the boundary
	_, ok = prices.Price("broken:ASSET")
	require.False(t, ok)
}

func TestGardenClient_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Order(context.Background(), "ord-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestGardenClient_MalformedTimestamp(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "Ok",
			"result": {"solver_id": "s", "created_at": "yesterday"}
		}`))
	})

	_, err := client.Order(context.Background(), "ord-1")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrDataUnavailable), "a parse error is not a fetch failure")
}

func TestGardenClient_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status": "Ok", "result": {"solver_id": "s", "created_at": "2026-03-01T12:00:00Z"}}`))
	}))
	t.Cleanup(server.Close)

	client := NewGardenClient(server.URL, 5*time.Second)
	client.backoff = retrier.Backoff{Attempts: 3, Initial: time.Millisecond, Max: time.Millisecond, Factor: 1}

	order, err := client.Order(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Equal(t, "s", order.SolverID)
	require.Equal(t, 3, attempts)
}
