package checks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/swaptriage/internal/entity"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func legacyWithDeadline(createdAt time.Time, deadline time.Time, initiatedAt *time.Time) *entity.LegacyOrder {
	d := deadline.Unix()
	return &entity.LegacyOrder{
		OrderID:           "ord-1",
		CreatedAt:         createdAt,
		Deadline:          &d,
		SourceInitiatedAt: initiatedAt,
	}
}

func TestDeadline_NoData(t *testing.T) {
	check := Deadline{}

	result, err := check.Evaluate(context.Background(), &Input{Now: testNow})
	require.NoError(t, err)
	require.False(t, result.Matched)

	result, err = check.Evaluate(context.Background(), &Input{
		Legacy: &entity.LegacyOrder{CreatedAt: testNow},
		Now:    testNow,
	})
	require.NoError(t, err)
	require.False(t, result.Matched, "no recorded deadline means the check does not apply")
}

func TestDeadline_NeverInitiated(t *testing.T) {
	createdAt := testNow.Add(-2 * time.Hour)
	deadline := testNow.Add(-1 * time.Hour)

	result, err := Deadline{}.Evaluate(context.Background(), &Input{
		Legacy: legacyWithDeadline(createdAt, deadline, nil),
		Now:    testNow,
	})
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.Equal(t, entity.ReasonDeadlineMissed, result.ReasonCode)
	require.Contains(t, result.Summary, "never initiated before deadline")

	evidence, ok := result.Evidence.(entity.DeadlineEvidence)
	require.True(t, ok)
	require.Nil(t, evidence.InitiateTimestamp)
	require.Equal(t, deadline.UTC(), evidence.Deadline)
}

func TestDeadline_InitiatedLate(t *testing.T) {
	createdAt := testNow.Add(-3 * time.Hour)
	deadline := createdAt.Add(1 * time.Hour)
	initiatedAt := deadline.Add(7 * time.Minute)

	result, err := Deadline{}.Evaluate(context.Background(), &Input{
		Legacy: legacyWithDeadline(createdAt, deadline, &initiatedAt),
		Now:    testNow,
	})
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.Equal(t, entity.ReasonDeadlineMissed, result.ReasonCode)
	require.Contains(t, result.Summary, "7 minutes after deadline")

	evidence, ok := result.Evidence.(entity.DeadlineEvidence)
	require.True(t, ok)
	require.NotNil(t, evidence.DelayMinutes)
	require.EqualValues(t, 7, *evidence.DelayMinutes)
}

func TestDeadline_DelayRoundsToWholeMinutes(t *testing.T) {
	createdAt := testNow.Add(-3 * time.Hour)
	deadline := createdAt.Add(1 * time.Hour)
	initiatedAt := deadline.Add(7*time.Minute + 40*time.Second)

	result, err := Deadline{}.Evaluate(context.Background(), &Input{
		Legacy: legacyWithDeadline(createdAt, deadline, &initiatedAt),
		Now:    testNow,
	})
	require.NoError(t, err)
	require.True(t, result.Matched)

	evidence := result.Evidence.(entity.DeadlineEvidence)
	require.EqualValues(t, 8, *evidence.DelayMinutes)
}

func TestDeadline_InitiatedInTime(t *testing.T) {
	createdAt := testNow.Add(-3 * time.Hour)
	deadline := createdAt.Add(1 * time.Hour)
	initiatedAt := deadline.Add(-10 * time.Minute)

	result, err := Deadline{}.Evaluate(context.Background(), &Input{
		Legacy: legacyWithDeadline(createdAt, deadline, &initiatedAt),
		Now:    testNow,
	})
	require.NoError(t, err)
	require.False(t, result.Matched)
}
