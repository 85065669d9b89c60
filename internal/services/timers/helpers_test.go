package timers

import (
	"context"
	"testing"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/JorgeSaicoski/timekeeper/internal/testutil"
	"github.com/stretchr/testify/require"
)

var (
	t0    = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	alice = db.Owner{ID: "42", Role: db.RoleUser}
	bob   = db.Owner{ID: "43", Role: db.RoleUser}
	admin = db.Owner{ID: "1", Role: db.RoleAdmin}
)

func setupService(t *testing.T, opts ...Option) (*TimerService, *testutil.FakeClock, *db.TimeLogRepository) {
	t.Helper()
	conn := testutil.NewTestDB(t)
	clock := testutil.NewFakeClock(t0)
	svc := NewTimerService(conn, append([]Option{WithClock(clock)}, opts...)...)
	return svc, clock, db.NewTimeLogRepository(conn)
}

// openCount counts open logs of owner+category straight from the table.
func openCount(t *testing.T, repo *db.TimeLogRepository, owner db.Owner, category db.Category) int64 {
	t.Helper()
	var n int64
	err := repo.DB(context.Background()).Model(&db.TimeLog{}).
		Where("owner_id = ? AND owner_role = ? AND category = ? AND end_time IS NULL", owner.ID, owner.Role, category).
		Count(&n).Error
	require.NoError(t, err)
	return n
}

func totalCount(t *testing.T, repo *db.TimeLogRepository) int64 {
	t.Helper()
	var n int64
	require.NoError(t, repo.DB(context.Background()).Model(&db.TimeLog{}).Count(&n).Error)
	return n
}
