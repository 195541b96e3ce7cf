package diagnose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/swaptriage/internal/entity"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func initiatedOrder(srcOffset, dstOffset time.Duration) *entity.Order {
	src := baseTime.Add(srcOffset)
	dst := baseTime.Add(dstOffset)
	return &entity.Order{
		OrderID:     "ord-1",
		CreatedAt:   baseTime,
		Source:      &entity.Swap{InitiateTimestamp: &src},
		Destination: &entity.Swap{InitiateTimestamp: &dst},
	}
}

func TestCompletionTime(t *testing.T) {
	tests := []struct {
		name  string
		order *entity.Order
		want  string
		ok    bool
	}{
		{
			name:  "minutes and seconds",
			order: initiatedOrder(0, 125*time.Second),
			want:  "2m 5s",
			ok:    true,
		},
		{
			name:  "under a minute",
			order: initiatedOrder(0, 45*time.Second),
			want:  "45s",
			ok:    true,
		},
		{
			name:  "ninety seconds",
			order: initiatedOrder(10*time.Second, 100*time.Second),
			want:  "1m 30s",
			ok:    true,
		},
		{
			name:  "negative duration is undefined, not zero",
			order: initiatedOrder(0, -1*time.Second),
			ok:    false,
		},
		{
			name: "missing destination timestamp",
			order: &entity.Order{
				Source:      &entity.Swap{InitiateTimestamp: &baseTime},
				Destination: &entity.Swap{},
			},
			ok: false,
		},
		{
			name:  "missing legs",
			order: &entity.Order{},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CompletionTime(tt.order)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTimeline(t *testing.T) {
	order := initiatedOrder(42*time.Second, 132*time.Second)

	timeline, ok := Timeline(order)
	require.True(t, ok)
	require.Equal(t,
		"Order created at 2026-03-01 12:00:00 UTC\nSource initiated +42s\nDestination initiated +132s",
		timeline)
}

func TestTimeline_RequiresCreationTimestamp(t *testing.T) {
	order := initiatedOrder(0, 10*time.Second)
	order.CreatedAt = time.Time{}

	_, ok := Timeline(order)
	require.False(t, ok)
}
