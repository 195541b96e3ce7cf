package diagnose

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/swaptriage/internal/entity"
	"github.com/vadiminshakov/swaptriage/internal/services/checks"
	"github.com/vadiminshakov/swaptriage/internal/services/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OrderProvider returns both generations of order-state data for an order.
type OrderProvider interface {
	Order(ctx context.Context, orderID string) (*entity.Order, error)
	LegacyOrder(ctx context.Context, orderID string) (*entity.LegacyOrder, error)
}

// LiquidityProvider returns the per-solver asset balances.
type LiquidityProvider interface {
	Liquidity(ctx context.Context) ([]entity.SolverLiquidity, error)
}

// FiatPriceProvider returns the current asset price table.
type FiatPriceProvider interface {
	FiatPrices(ctx context.Context) (entity.FiatPrices, error)
}

// Engine is the diagnosis orchestrator. Each call is stateless: snapshots are
// fetched fresh, diagnosed, and discarded.
type Engine struct {
	orders          OrderProvider
	liquidity       LiquidityProvider
	fiat            FiatPriceProvider
	classifier      status.Classifier
	pipeline        *Pipeline
	blacklist       checks.Blacklist
	diagnosePending bool
	logger          *zap.Logger
	now             func() time.Time
}

// NewEngine wires the orchestrator. diagnosePending routes in_progress orders
// through the check pipeline as well; by default they are terminal.
func NewEngine(
	logger *zap.Logger,
	orders OrderProvider,
	liquidity LiquidityProvider,
	fiat FiatPriceProvider,
	classifier status.Classifier,
	pipeline *Pipeline,
	diagnosePending bool,
) *Engine {
	return &Engine{
		orders:          orders,
		liquidity:       liquidity,
		fiat:            fiat,
		classifier:      classifier,
		pipeline:        pipeline,
		diagnosePending: diagnosePending,
		logger:          logger,
		now:             time.Now,
	}
}

// Diagnose produces the verdict for one order. A failed upstream fetch aborts
// the whole call: data-retrieval failure is not evidence of absence.
func (e *Engine) Diagnose(ctx context.Context, orderID string) (*entity.Diagnosis, error) {
	order, legacy, err := e.fetchOrders(ctx, orderID)
	if err != nil {
		return nil, err
	}

	input := &checks.Input{Order: order, Legacy: legacy, Now: e.now()}

	// The blacklist override precedes all lifecycle branching.
	if result, _ := e.blacklist.Evaluate(ctx, input); result.Matched {
		return &entity.Diagnosis{
			OrderID:    orderID,
			Status:     e.classifier.Classify(order, legacy, input.Now),
			Summary:    result.Summary,
			ReasonCode: result.ReasonCode,
			Evidence:   result.Evidence,
		}, nil
	}

	st := e.classifier.Classify(order, legacy, input.Now)
	e.logger.Debug("order classified", zap.String("order_id", orderID), zap.String("status", string(st)))

	switch st {
	case entity.StatusNotInitiated:
		return &entity.Diagnosis{
			OrderID: orderID,
			Status:  st,
			Summary: "Order was never initiated; no on-chain action was taken on either leg",
		}, nil

	case entity.StatusInProgress:
		if !e.diagnosePending {
			return &entity.Diagnosis{
				OrderID: orderID,
				Status:  st,
				Summary: "Order is in progress, awaiting redeem on both legs",
			}, nil
		}
		return e.runPipeline(ctx, orderID, st, input)

	case entity.StatusCompleted:
		return e.completed(orderID, order), nil

	case entity.StatusRefunded, entity.StatusExpired:
		return e.runPipeline(ctx, orderID, st, input)

	default:
		return &entity.Diagnosis{
			OrderID: orderID,
			Status:  entity.StatusUndetermined,
			Summary: "Order is in an unrecognized state",
			Action:  entity.ActionHumanIntervention,
		}, nil
	}
}

// AnalyzeTiming builds the facts-only deadline report for an order.
func (e *Engine) AnalyzeTiming(ctx context.Context, orderID string) (*entity.TimingReport, error) {
	legacy, err := e.orders.LegacyOrder(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch legacy order snapshot")
	}

	report := &entity.TimingReport{
		OrderID:               orderID,
		CreatedAt:             legacy.CreatedAt,
		InitiateTimestamp:     legacy.SourceInitiatedAt,
		RequiredConfirmations: legacy.RequiredConfirmations,
		CurrentConfirmations:  legacy.CurrentConfirmations,
	}
	if deadline, ok := legacy.DeadlineTime(); ok {
		report.Deadline = &deadline
	}

	switch {
	case legacy.SourceInitiatedAt == nil:
		report.MissedDeadline = true
		report.Reason = "User never initiated before deadline"
	case report.Deadline != nil && legacy.SourceInitiatedAt.After(*report.Deadline):
		delay := int64(math.Round(legacy.SourceInitiatedAt.Sub(*report.Deadline).Minutes()))
		report.MissedDeadline = true
		report.DelayMinutes = &delay
		report.Reason = "Initiated after deadline"
	default:
		report.Reason = "Initiated within deadline"
	}

	return report, nil
}

// fetchOrders retrieves both order schemas concurrently; neither depends on
// the other's result.
func (e *Engine) fetchOrders(ctx context.Context, orderID string) (*entity.Order, *entity.LegacyOrder, error) {
	var (
		order  *entity.Order
		legacy *entity.LegacyOrder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = e.orders.Order(gctx, orderID)
		return errors.Wrap(err, "fetch order snapshot")
	})
	g.Go(func() error {
		var err error
		legacy, err = e.orders.LegacyOrder(gctx, orderID)
		return errors.Wrap(err, "fetch legacy order snapshot")
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return order, legacy, nil
}

// runPipeline gathers the auxiliary snapshots and evaluates the checks in
// priority order.
func (e *Engine) runPipeline(ctx context.Context, orderID string, st entity.Status, input *checks.Input) (*entity.Diagnosis, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		input.Liquidity, err = e.liquidity.Liquidity(gctx)
		return errors.Wrap(err, "fetch liquidity snapshot")
	})
	g.Go(func() error {
		var err error
		input.Fiat, err = e.fiat.FiatPrices(gctx)
		return errors.Wrap(err, "fetch fiat prices")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := e.pipeline.Run(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "check pipeline")
	}

	if result.Matched {
		return &entity.Diagnosis{
			OrderID:    orderID,
			Status:     st,
			Summary:    result.Summary,
			ReasonCode: result.ReasonCode,
			Evidence:   result.Evidence,
		}, nil
	}

	return &entity.Diagnosis{
		OrderID: orderID,
		Status:  st,
		Summary: fallbackSummary(st),
		Action:  entity.ActionHumanIntervention,
	}, nil
}

func (e *Engine) completed(orderID string, order *entity.Order) *entity.Diagnosis {
	diagnosis := &entity.Diagnosis{
		OrderID: orderID,
		Status:  entity.StatusCompleted,
		Summary: "Order completed successfully",
	}

	if elapsed, ok := CompletionTime(order); ok {
		diagnosis.CompletionTime = elapsed
		diagnosis.Summary = "Order completed in " + elapsed
	}
	if timeline, ok := Timeline(order); ok {
		diagnosis.Summary += "\n" + timeline
	}

	return diagnosis
}

func fallbackSummary(st entity.Status) string {
	switch st {
	case entity.StatusRefunded:
		return "Order was refunded, but no automated check matched a known root cause"
	case entity.StatusExpired:
		return "Order expired, but no automated check matched a known root cause"
	case entity.StatusInProgress:
		return "Order is still in progress and no automated check matched a known root cause"
	default:
		return "No automated check matched a known root cause"
	}
}
