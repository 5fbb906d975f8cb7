package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store/sqlite"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

func TestVehicleStore_EntryRoundTrip(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)
	ctx := context.Background()

	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	id, err := vehicles.InsertEntry(ctx, "RAB123A", entry)
	require.NoError(t, err)
	require.NotZero(t, id)

	rec, err := vehicles.FindUnpaid(ctx, "RAB123A")
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "RAB123A", rec.Plate)
	assert.Equal(t, entry, rec.EntryTime)
	assert.Nil(t, rec.ExitTime)
	assert.Equal(t, types.StatusUnpaid, rec.PaymentStatus)
	assert.Zero(t, rec.DuePayment)
}

func TestVehicleStore_FindUnpaidNewestWins(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := vehicles.InsertEntry(ctx, "RAB123A", base)
	require.NoError(t, err)
	newer, err := vehicles.InsertEntry(ctx, "RAB123A", base.Add(2*time.Hour))
	require.NoError(t, err)

	rec, err := vehicles.FindUnpaid(ctx, "RAB123A")
	require.NoError(t, err)
	assert.Equal(t, newer, rec.ID)
}

func TestVehicleStore_FindUnpaidSkipsPaidRows(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	id, err := vehicles.InsertEntry(ctx, "RAB123A", base)
	require.NoError(t, err)
	require.NoError(t, vehicles.MarkPaid(ctx, id, base.Add(time.Hour), 300))

	_, err = vehicles.FindUnpaid(ctx, "RAB123A")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVehicleStore_MarkPaidSetsExitAndDue(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)
	ctx := context.Background()

	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	exit := entry.Add(90 * time.Minute)
	id, err := vehicles.InsertEntry(ctx, "RAB123A", entry)
	require.NoError(t, err)
	require.NoError(t, vehicles.MarkPaid(ctx, id, exit, 450))

	recs, err := vehicles.ListVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.StatusPaid, recs[0].PaymentStatus)
	assert.Equal(t, int64(450), recs[0].DuePayment)
	require.NotNil(t, recs[0].ExitTime)
	assert.Equal(t, exit, *recs[0].ExitTime)
}

func TestVehicleStore_MarkExitedKeepsDueUntouched(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)
	ctx := context.Background()

	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	id, err := vehicles.InsertEntry(ctx, "RAB123A", entry)
	require.NoError(t, err)
	require.NoError(t, vehicles.MarkExited(ctx, id, entry.Add(5*time.Minute)))

	recs, err := vehicles.ListVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.StatusPaid, recs[0].PaymentStatus)
	assert.Zero(t, recs[0].DuePayment)
	require.NotNil(t, recs[0].ExitTime)
}

func TestVehicleStore_MarkPaidUnknownID(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)

	err := vehicles.MarkPaid(context.Background(), 9999, time.Now().UTC(), 100)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVehicleStore_CountUnpaidPerPlate(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	id, err := vehicles.InsertEntry(ctx, "RAB123A", base)
	require.NoError(t, err)
	_, err = vehicles.InsertEntry(ctx, "RAC456B", base)
	require.NoError(t, err)

	n, err := vehicles.CountUnpaid(ctx, "RAB123A")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, vehicles.MarkExited(ctx, id, base.Add(time.Minute)))
	n, err = vehicles.CountUnpaid(ctx, "RAB123A")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = vehicles.CountUnpaid(ctx, "RAC456B")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVehicleStore_ListVehiclesNewestFirst(t *testing.T) {
	conn, writer := openTestDB(t)
	vehicles := sqlite.NewVehicleStore(conn, writer)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := vehicles.InsertEntry(ctx, "RAB123A", base)
	require.NoError(t, err)
	_, err = vehicles.InsertEntry(ctx, "RAC456B", base.Add(time.Hour))
	require.NoError(t, err)

	recs, err := vehicles.ListVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "RAC456B", recs[0].Plate)
	assert.Equal(t, "RAB123A", recs[1].Plate)
}
