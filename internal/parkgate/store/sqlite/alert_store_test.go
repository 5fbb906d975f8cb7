package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store/sqlite"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

func TestAlertStore_InsertAndListActive(t *testing.T) {
	conn, writer := openTestDB(t)
	alerts := sqlite.NewAlertStore(conn, writer)
	ctx := context.Background()

	rec := types.AlertRecord{
		Reference:  uuid.NewString(),
		Plate:      "RAB123A",
		AlertTime:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		DuePayment: 1200,
		AlertType:  types.AlertPaymentPending,
		Notes:      "exit denied",
	}
	id, err := alerts.Insert(ctx, rec)
	require.NoError(t, err)
	require.NotZero(t, id)

	active, err := alerts.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	got := active[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, rec.Reference, got.Reference)
	assert.Equal(t, rec.Plate, got.Plate)
	assert.Equal(t, rec.AlertTime, got.AlertTime)
	assert.Equal(t, rec.DuePayment, got.DuePayment)
	assert.Equal(t, types.AlertPaymentPending, got.AlertType)
	assert.False(t, got.Resolved)
	assert.Equal(t, "exit denied", got.Notes)
}

func TestAlertStore_ResolveHidesAlert(t *testing.T) {
	conn, writer := openTestDB(t)
	alerts := sqlite.NewAlertStore(conn, writer)
	ctx := context.Background()

	id, err := alerts.Insert(ctx, types.AlertRecord{
		Reference: uuid.NewString(),
		Plate:     "RAB123A",
		AlertTime: time.Now().UTC(),
		AlertType: types.AlertPaymentPending,
	})
	require.NoError(t, err)

	require.NoError(t, alerts.Resolve(ctx, id))

	active, err := alerts.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Resolving twice still finds the row.
	assert.NoError(t, alerts.Resolve(ctx, id))
}

func TestAlertStore_ResolveUnknownID(t *testing.T) {
	conn, writer := openTestDB(t)
	alerts := sqlite.NewAlertStore(conn, writer)

	err := alerts.Resolve(context.Background(), 424242)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAlertStore_ListActiveNewestFirst(t *testing.T) {
	conn, writer := openTestDB(t)
	alerts := sqlite.NewAlertStore(conn, writer)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := alerts.Insert(ctx, types.AlertRecord{
		Reference: uuid.NewString(), Plate: "RAB123A", AlertTime: base, AlertType: types.AlertPaymentPending,
	})
	require.NoError(t, err)
	_, err = alerts.Insert(ctx, types.AlertRecord{
		Reference: uuid.NewString(), Plate: "RAC456B", AlertTime: base.Add(time.Hour), AlertType: types.AlertPaymentPending,
	})
	require.NoError(t, err)

	active, err := alerts.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "RAC456B", active[0].Plate)
	assert.Equal(t, "RAB123A", active[1].Plate)
}
