package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanChangeStatusTo_SideBranches(t *testing.T) {
	for _, branch := range []Status{StatusReserved, StatusCleaning, StatusMaintenance} {
		assert.True(t, CanChangeStatusTo(StatusAvailable, branch), "available → %s", branch)
		assert.True(t, CanChangeStatusTo(branch, StatusAvailable), "%s → available", branch)
	}
}

func TestCanChangeStatusTo_OccupancyIsNotManual(t *testing.T) {
	// Occupancy comes from session start and finalize only.
	assert.False(t, CanChangeStatusTo(StatusAvailable, StatusOccupied))
	assert.False(t, CanChangeStatusTo(StatusOccupied, StatusAvailable))
	assert.False(t, CanChangeStatusTo(StatusBilling, StatusAvailable))

	// Except moving an occupied table into billing while settling.
	assert.True(t, CanChangeStatusTo(StatusOccupied, StatusBilling))
	assert.False(t, CanChangeStatusTo(StatusBilling, StatusOccupied))

	// Occupied tables cannot jump onto a side branch.
	assert.False(t, CanChangeStatusTo(StatusOccupied, StatusCleaning))
	assert.False(t, CanChangeStatusTo(StatusReserved, StatusOccupied))
	assert.False(t, CanChangeStatusTo(StatusCleaning, StatusMaintenance))
}

func TestTableOccupiedMinutes(t *testing.T) {
	now := time.Now().UTC()
	since := now.Add(-45 * time.Minute)

	table := Table{Status: StatusOccupied, LastOccupiedAt: &since}
	assert.Equal(t, 45, table.OccupiedMinutes(now))

	table.Status = StatusAvailable
	assert.Equal(t, 0, table.OccupiedMinutes(now))

	table.Status = StatusOccupied
	table.LastOccupiedAt = nil
	assert.Equal(t, 0, table.OccupiedMinutes(now))
}

func TestSessionDurationMinutes(t *testing.T) {
	now := time.Now().UTC()
	opened := now.Add(-90 * time.Minute)
	closed := now.Add(-10 * time.Minute)

	active := Session{CreatedAt: opened}
	assert.Equal(t, 90, active.DurationMinutes(now))

	done := Session{CreatedAt: opened, CompletedAt: &closed}
	assert.Equal(t, 80, done.DurationMinutes(now))
}
