package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addWater(t *testing.T, s *session, amount, at string) string {
	t.Helper()
	cmd := &WaterAddCommand{At: at, globals: &GlobalFlags{}}
	cmd.Args.Amount = amount
	var err error
	out := captureOutput(t, func() {
		err = cmd.executeWithSession(context.Background(), s)
	})
	require.NoError(t, err)
	return out
}

func TestWaterAdd(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	out := addWater(t, s, "250", "08:30")
	assert.Contains(t, out, "Logged 250 ml.")

	entries, err := s.svc.Water(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 250.0, entries[0].AmountML)
	assert.Equal(t, time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), entries[0].Timestamp)
}

func TestWaterAdd_ConvertsUnit(t *testing.T) {
	s := newTestSession(t)

	cmd := &WaterAddCommand{Unit: "oz", globals: &GlobalFlags{}}
	cmd.Args.Amount = "8"
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithSession(context.Background(), s))
	})
	assert.Contains(t, out, "Logged 8 oz.")

	entries, err := s.svc.Water(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 236.588, entries[0].AmountML, 0.001)
}

func TestWaterAdd_InvalidAmountIsNoop(t *testing.T) {
	s := newTestSession(t)

	for _, amount := range []string{"abc", "0", "-5"} {
		out := addWater(t, s, amount, "")
		assert.Contains(t, out, "Nothing logged", amount)
	}

	entries, err := s.svc.Water(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWaterAdd_OtherDayIsNoop(t *testing.T) {
	s := newTestSession(t)
	out := addWater(t, s, "250", "2026-03-01T20:00:00Z")
	assert.Contains(t, out, "Nothing logged")
}

func TestWaterAdd_BadTimeErrors(t *testing.T) {
	s := newTestSession(t)
	cmd := &WaterAddCommand{At: "noon", globals: &GlobalFlags{}}
	cmd.Args.Amount = "250"
	err := cmd.executeWithSession(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid time")
}

func TestWaterAdd_JSON(t *testing.T) {
	s := newTestSession(t)
	cmd := &WaterAddCommand{globals: &GlobalFlags{JSON: true}}
	cmd.Args.Amount = "300"
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithSession(context.Background(), s))
	})

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, true, result["applied"])
}

func TestWaterRemove(t *testing.T) {
	s := newTestSession(t)
	addWater(t, s, "250", "07:00")
	addWater(t, s, "500", "08:00")

	cmd := &WaterRemoveCommand{globals: &GlobalFlags{}}
	cmd.Args.Index = "1"
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithSession(context.Background(), s))
	})
	assert.Contains(t, out, "Removed entry 1.")

	entries, err := s.svc.Water(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 500.0, entries[0].AmountML)

	cmd.Args.Index = "9"
	out = captureOutput(t, func() {
		require.NoError(t, cmd.executeWithSession(context.Background(), s))
	})
	assert.Contains(t, out, "Nothing removed")
}

func TestWaterList(t *testing.T) {
	s := newTestSession(t)
	addWater(t, s, "250", "07:00")
	addWater(t, s, "750", "08:15")

	cmd := &WaterListCommand{globals: &GlobalFlags{}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithSession(context.Background(), s))
	})
	assert.Contains(t, out, "Today (2026-03-02)")
	assert.Contains(t, out, "1000 ml of 2000 ml (50%)")
	assert.Contains(t, out, "Remaining:  1000 ml")
	assert.Contains(t, out, "7:00 AM")
	assert.Contains(t, out, "8:15 AM")
}

func TestWaterList_Empty(t *testing.T) {
	s := newTestSession(t)
	cmd := &WaterListCommand{globals: &GlobalFlags{}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithSession(context.Background(), s))
	})
	assert.Contains(t, out, "No water logged yet.")
}

func TestWaterList_JSON(t *testing.T) {
	s := newTestSession(t)
	addWater(t, s, "500", "07:00")

	cmd := &WaterListCommand{globals: &GlobalFlags{JSON: true}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithSession(context.Background(), s))
	})

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, "2026-03-02", result["date"])
	assert.Equal(t, 500.0, result["totalMl"])
	assert.Equal(t, 25.0, result["progress"])
	assert.Len(t, result["entries"], 1)
}
