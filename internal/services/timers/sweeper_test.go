package timers

import (
	"context"
	"testing"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_SweepOnce(t *testing.T) {
	svc, clock, repo := setupService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, alice, StartInput{ProjectName: "Website", EstimatedSeconds: 60})
	require.NoError(t, err)

	sweeper := NewSweeper(svc, time.Second)
	assert.Zero(t, sweeper.SweepOnce(ctx))

	clock.Advance(time.Minute)
	assert.Equal(t, 1, sweeper.SweepOnce(ctx))
	assert.Zero(t, openCount(t, repo, alice, db.CategoryProject))
	assert.Zero(t, sweeper.SweepOnce(ctx))
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewSweeper(svc, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeper_DisabledReturnsImmediately(t *testing.T) {
	svc, _, _ := setupService(t)

	done := make(chan struct{})
	go func() {
		NewSweeper(svc, 0).Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweeper kept running")
	}
}
