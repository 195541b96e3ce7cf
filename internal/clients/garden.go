package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/swaptriage/internal/entity"
	"github.com/vadiminshakov/swaptriage/pkg/retrier"
)

const defaultTimeout = 15 * time.Second

// ErrDataUnavailable marks an upstream fetch failure. A diagnosis call must
// abort on it instead of treating the missing data as "no problem found".
var ErrDataUnavailable = errors.New("upstream data unavailable")

// GardenClient fetches order, liquidity and fiat price snapshots from the
// Garden API. It owns transport concerns only; callers receive parsed,
// strongly-typed records.
type GardenClient struct {
	baseURL    string
	httpClient *http.Client
	backoff    retrier.Backoff
}

// NewGardenClient creates a client for the given API base URL.
func NewGardenClient(baseURL string, timeout time.Duration) *GardenClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GardenClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    retrier.Default(),
	}
}

type envelope struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

type swapPayload struct {
	Asset             string           `json:"asset"`
	Amount            string           `json:"amount"`
	FilledAmount      string           `json:"filled_amount"`
	InitiateTxHash    string           `json:"initiate_tx_hash"`
	RedeemTxHash      string           `json:"redeem_tx_hash"`
	RefundTxHash      string           `json:"refund_tx_hash"`
	AssetPrice        *decimal.Decimal `json:"asset_price"`
	InitiateTimestamp string           `json:"initiate_timestamp"`
}

type orderPayload struct {
	SolverID        string       `json:"solver_id"`
	SourceSwap      *swapPayload `json:"source_swap"`
	DestinationSwap *swapPayload `json:"destination_swap"`
	CreatedAt       string       `json:"created_at"`
}

type legacyOrderPayload struct {
	CreateOrder struct {
		CreatedAt      string `json:"created_at"`
		AdditionalData *struct {
			Deadline      *int64 `json:"deadline"`
			IsBlacklisted *bool  `json:"is_blacklisted"`
		} `json:"additional_data"`
	} `json:"create_order"`
	SourceSwap struct {
		InitiateTimestamp     string `json:"initiate_timestamp"`
		RequiredConfirmations int    `json:"required_confirmations"`
		CurrentConfirmations  int    `json:"current_confirmations"`
	} `json:"source_swap"`
}

type solverLiquidityPayload struct {
	SolverID  string `json:"solver_id"`
	Liquidity []struct {
		Asset           string `json:"asset"`
		Balance         string `json:"balance"`
		ReadableBalance string `json:"readable_balance"`
		FiatValue       string `json:"fiat_value"`
	} `json:"liquidity"`
}

// Order fetches the current-schema order snapshot.
func (c *GardenClient) Order(ctx context.Context, orderID string) (*entity.Order, error) {
	raw, err := c.get(ctx, fmt.Sprintf("%s/v2/orders/%s", c.baseURL, orderID))
	if err != nil {
		return nil, errors.Wrap(err, "fetch order")
	}

	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}

	createdAt, err := parseTimestamp(payload.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "order created_at")
	}

	order := &entity.Order{
		OrderID:  orderID,
		SolverID: payload.SolverID,
	}
	if createdAt != nil {
		order.CreatedAt = *createdAt
	}
	if order.Source, err = toSwap(payload.SourceSwap); err != nil {
		return nil, errors.Wrap(err, "source swap")
	}
	if order.Destination, err = toSwap(payload.DestinationSwap); err != nil {
		return nil, errors.Wrap(err, "destination swap")
	}

	return order, nil
}

// LegacyOrder fetches the first-generation order snapshot, the only source of
// deadline and blacklist data.
func (c *GardenClient) LegacyOrder(ctx context.Context, orderID string) (*entity.LegacyOrder, error) {
	raw, err := c.get(ctx, fmt.Sprintf("%s/orders/id/%s", c.baseURL, orderID))
	if err != nil {
		return nil, errors.Wrap(err, "fetch legacy order")
	}

	var payload legacyOrderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "decode legacy order")
	}

	createdAt, err := parseTimestamp(payload.CreateOrder.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "legacy order created_at")
	}

	order := &entity.LegacyOrder{
		OrderID:               orderID,
		RequiredConfirmations: payload.SourceSwap.RequiredConfirmations,
		CurrentConfirmations:  payload.SourceSwap.CurrentConfirmations,
	}
	if createdAt != nil {
		order.CreatedAt = *createdAt
	}
	if ad := payload.CreateOrder.AdditionalData; ad != nil {
		order.Deadline = ad.Deadline
		if ad.IsBlacklisted != nil {
			order.IsBlacklisted = *ad.IsBlacklisted
		}
	}
	if order.SourceInitiatedAt, err = parseTimestamp(payload.SourceSwap.InitiateTimestamp); err != nil {
		return nil, errors.Wrap(err, "legacy initiate_timestamp")
	}

	return order, nil
}

// Liquidity fetches the per-solver asset balances.
func (c *GardenClient) Liquidity(ctx context.Context) ([]entity.SolverLiquidity, error) {
	raw, err := c.get(ctx, c.baseURL+"/v2/liquidity")
	if err != nil {
		return nil, errors.Wrap(err, "fetch liquidity")
	}

	var payload []solverLiquidityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "decode liquidity")
	}

	solvers := make([]entity.SolverLiquidity, 0, len(payload))
	for _, s := range payload {
		liq := entity.SolverLiquidity{SolverID: s.SolverID, Liquidity: make([]entity.AssetLiquidity, 0, len(s.Liquidity))}
		for _, a := range s.Liquidity {
			liq.Liquidity = append(liq.Liquidity, entity.AssetLiquidity{
				Asset:           a.Asset,
				Balance:         a.Balance,
				ReadableBalance: a.ReadableBalance,
				FiatValue:       a.FiatValue,
			})
		}
		solvers = append(solvers, liq)
	}

	return solvers, nil
}

// FiatPrices fetches the asset price table. Non-positive prices are unusable
// and dropped at this boundary.
func (c *GardenClient) FiatPrices(ctx context.Context) (entity.FiatPrices, error) {
	raw, err := c.get(ctx, c.baseURL+"/v2/fiat")
	if err != nil {
		return nil, errors.Wrap(err, "fetch fiat prices")
	}

	var payload map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "decode fiat prices")
	}

	prices := make(entity.FiatPrices, len(payload))
	for asset, price := range payload {
		if price.IsPositive() {
			prices[asset] = price
		}
	}

	return prices, nil
}

// get fetches a {status, result} envelope and returns the raw result. Network
// errors and non-2xx responses are retried, then surfaced as ErrDataUnavailable.
func (c *GardenClient) get(ctx context.Context, url string) (json.RawMessage, error) {
	return retrier.DoWithData(ctx, c.backoff, func(ctx context.Context) (json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrap(err, "build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.Wrapf(ErrDataUnavailable, "GET %s: %v", url, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrapf(ErrDataUnavailable, "GET %s: read body: %v", url, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, errors.Wrapf(ErrDataUnavailable, "GET %s: status %d", url, resp.StatusCode)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, errors.Wrapf(err, "GET %s: decode envelope", url)
		}

		return env.Result, nil
	})
}

func toSwap(p *swapPayload) (*entity.Swap, error) {
	if p == nil {
		return nil, nil
	}

	initiatedAt, err := parseTimestamp(p.InitiateTimestamp)
	if err != nil {
		return nil, errors.Wrap(err, "initiate_timestamp")
	}

	return &entity.Swap{
		Asset:             p.Asset,
		Amount:            p.Amount,
		FilledAmount:      p.FilledAmount,
		InitiateTxHash:    p.InitiateTxHash,
		RedeemTxHash:      p.RedeemTxHash,
		RefundTxHash:      p.RefundTxHash,
		AssetPrice:        p.AssetPrice,
		InitiateTimestamp: initiatedAt,
	}, nil
}

func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse timestamp %q", s)
	}
	t = t.UTC()
	return &t, nil
}
