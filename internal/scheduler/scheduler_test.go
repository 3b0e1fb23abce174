package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"lifelevel/internal/engine"
	"lifelevel/internal/models"
)

type fakeChecker struct {
	calls   int
	notices []engine.ReminderNotice
	err     error
}

func (f *fakeChecker) CheckReminders(ctx context.Context) ([]engine.ReminderNotice, error) {
	f.calls++
	return f.notices, f.err
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestRunOnce(t *testing.T) {
	f := &fakeChecker{notices: []engine.ReminderNotice{{Plan: models.PlannedActivity{ID: "p1"}}}}
	s := New(Config{Enabled: true, Spec: "@every 1m"}, f, quiet())
	require.Equal(t, 1, s.RunOnce(context.Background()))
	require.Equal(t, 1, f.calls)

	f.err = errors.New("db closed")
	require.Equal(t, 0, s.RunOnce(context.Background()))
}

func TestStartDisabled(t *testing.T) {
	s := New(Config{Enabled: false}, &fakeChecker{}, quiet())
	require.NoError(t, s.Start(context.Background()))
	require.True(t, s.Next().IsZero())
	s.Stop()
}

func TestStartSchedulesJob(t *testing.T) {
	s := New(Config{Enabled: true, Spec: "*/5 * * * *"}, &fakeChecker{}, quiet())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	require.False(t, s.Next().IsZero())
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(Config{Enabled: true, Spec: "every tuesday"}, &fakeChecker{}, quiet())
	require.Error(t, s.Start(context.Background()))
	require.Error(t, ValidateSpec("61 * * * *"))
	require.NoError(t, ValidateSpec("@hourly"))
}
