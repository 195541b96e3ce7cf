package diagnose

import (
	"fmt"
	"strings"

	"github.com/vadiminshakov/swaptriage/internal/entity"
)

// CompletionTime renders the elapsed time between the two legs' initiations
// as "{minutes}m {seconds}s", or "{seconds}s" under a minute. A missing
// timestamp or a destination initiation preceding the source one leaves the
// duration undefined, not zero.
func CompletionTime(order *entity.Order) (string, bool) {
	src, dst := order.Source, order.Destination
	if src == nil || dst == nil || src.InitiateTimestamp == nil || dst.InitiateTimestamp == nil {
		return "", false
	}

	elapsed := dst.InitiateTimestamp.Sub(*src.InitiateTimestamp)
	if elapsed < 0 {
		return "", false
	}

	seconds := int64(elapsed.Seconds())
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60), true
	}
	return fmt.Sprintf("%ds", seconds), true
}

// Timeline renders a three-line narrative of the order: creation time, then
// each leg's initiation as a whole-second offset from creation. It needs the
// creation timestamp and both initiations.
func Timeline(order *entity.Order) (string, bool) {
	src, dst := order.Source, order.Destination
	if order.CreatedAt.IsZero() || src == nil || dst == nil ||
		src.InitiateTimestamp == nil || dst.InitiateTimestamp == nil {
		return "", false
	}

	lines := []string{
		fmt.Sprintf("Order created at %s", order.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC")),
		fmt.Sprintf("Source initiated +%ds", int64(src.InitiateTimestamp.Sub(order.CreatedAt).Seconds())),
		fmt.Sprintf("Destination initiated +%ds", int64(dst.InitiateTimestamp.Sub(order.CreatedAt).Seconds())),
	}

	return strings.Join(lines, "\n"), true
}
