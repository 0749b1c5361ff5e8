package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmms/internal/maintenance"
	"cmms/internal/notification"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
}

func newFakeClock(at time.Time) *fakeClock { return &fakeClock{now: at} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := t.stopped
	t.stopped = true
	return !was
}

// Advance moves the clock and runs every due, unstopped callback.
// Advance(0) flushes timers armed with a zero delay.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, rest []*fakeTimer
	for _, t := range c.timers {
		if t.stopped {
			continue
		}
		if !t.at.After(c.now) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type shownCall struct {
	recipient string
	title     string
	body      string
}

type spySink struct {
	mu    sync.Mutex
	calls []shownCall
}

func (s *spySink) Show(_ context.Context, recipient, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, shownCall{recipient, title, body})
	return nil
}

func (s *spySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spySink) last() shownCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type spyBridge struct {
	mu        sync.Mutex
	scheduled map[int32]string // handle -> key
	canceled  []int32
}

func (b *spyBridge) Schedule(_ context.Context, handle int32, key, _, _ string, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scheduled == nil {
		b.scheduled = map[int32]string{}
	}
	b.scheduled[handle] = key
	return nil
}

func (b *spyBridge) Cancel(_ context.Context, handle int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canceled = append(b.canceled, handle)
	return nil
}

// base is 08:00 UTC so the default 09:00 due-hour is still ahead.
var base = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*Scheduler, *fakeClock, *spySink, *MemoryStateStore) {
	t.Helper()
	clk := newFakeClock(base)
	sink := &spySink{}
	state := &MemoryStateStore{}
	s := New(Options{Clock: clk, Sink: sink, State: state})
	return s, clk, sink, state
}

func reminder(id string, at time.Time) notification.Notification {
	return notification.Notification{
		ID:          id,
		Title:       "reminder " + id,
		ScheduledAt: at,
		CreatedBy:   "7",
		Recipients:  `["7"]`,
	}
}

func maint(id uint64, due time.Time) maintenance.Maintenance {
	return maintenance.Maintenance{
		ID:                          id,
		Title:                       "pump check",
		EquipmentName:               "pump-3",
		NextDueDate:                 due,
		Status:                      maintenance.StatusScheduled,
		NotificationEnabled:         true,
		NotificationTimeBeforeValue: 5,
		NotificationTimeBeforeUnit:  maintenance.UnitDays,
	}
}

func TestReminderFiresAtScheduledTime(t *testing.T) {
	s, clk, sink, state := newTestScheduler(t)
	ctx := context.Background()

	recs := []notification.Notification{reminder("n1", base.Add(5*time.Second))}
	s.Reconcile(ctx, recs, nil)

	clk.Advance(4 * time.Second)
	assert.Equal(t, 0, sink.count(), "must not fire early")

	clk.Advance(time.Second)
	require.Equal(t, 1, sink.count())
	assert.True(t, s.Shown("notif-n1"))

	saved, err := state.LoadShown(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notif-n1"}, saved)

	// same input again: nothing re-arms, nothing re-fires
	s.Reconcile(ctx, recs, nil)
	clk.Advance(time.Minute)
	assert.Equal(t, 1, sink.count())
}

func TestReminderGraceWindowDefersRecentPast(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	recs := []notification.Notification{reminder("n1", base.Add(-time.Second))}
	s.Reconcile(context.Background(), recs, nil)

	clk.Advance(0)
	assert.Equal(t, 0, sink.count(), "grace window must defer the fire")
	clk.Advance(time.Second)
	assert.Equal(t, 0, sink.count())
	clk.Advance(time.Second)
	assert.Equal(t, 1, sink.count(), "fires at now+2s")
}

func TestReminderLongPastFiresImmediately(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	recs := []notification.Notification{reminder("n1", base.Add(-time.Minute))}
	s.Reconcile(context.Background(), recs, nil)

	clk.Advance(0)
	assert.Equal(t, 1, sink.count())
}

func TestCompletedReminderExcluded(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	n := reminder("n1", base.Add(-time.Minute))
	n.IsCompleted = true
	s.Reconcile(context.Background(), []notification.Notification{n}, nil)

	clk.Advance(time.Hour)
	assert.Equal(t, 0, sink.count())
}

func TestReconcileIsIdempotent(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)
	ctx := context.Background()

	recs := []notification.Notification{reminder("n1", base.Add(10 * time.Second))}
	s.Reconcile(ctx, recs, nil)
	s.Reconcile(ctx, recs, nil)
	s.Reconcile(ctx, recs, nil)

	clk.Advance(time.Minute)
	assert.Equal(t, 1, sink.count(), "one timer per key, one fire per key")
}

func TestRemovedRecordCancelsTimer(t *testing.T) {
	clk := newFakeClock(base)
	sink := &spySink{}
	bridge := &spyBridge{}
	s := New(Options{Clock: clk, Sink: sink, Bridge: bridge, State: &MemoryStateStore{}})
	ctx := context.Background()

	recs := []notification.Notification{reminder("n1", base.Add(10 * time.Second))}
	s.Reconcile(ctx, recs, nil)
	assert.Equal(t, "notif-n1", bridge.scheduled[Hash31("notif-n1")])

	s.Reconcile(ctx, nil, nil)
	clk.Advance(time.Minute)

	assert.Equal(t, 0, sink.count(), "canceled timer must not fire")
	assert.Contains(t, bridge.canceled, Hash31("notif-n1"))
}

func TestReminderFansOutToRecipients(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	n := reminder("n1", base.Add(time.Second))
	n.Recipients = `["7","9"]`
	s.Reconcile(context.Background(), []notification.Notification{n}, nil)

	clk.Advance(time.Second)
	require.Equal(t, 2, sink.count())
}

func TestBeforeTriggerWithinThreshold(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	// due in 3 days, threshold 5 days -> before trigger fires now
	m := maint(1, base.AddDate(0, 0, 3))
	s.Reconcile(context.Background(), nil, []maintenance.Maintenance{m})

	clk.Advance(0)
	require.Equal(t, 1, sink.count())
	assert.Contains(t, sink.last().title, "Upcoming maintenance")
	assert.True(t, s.Shown("1-before-days-5"))
}

func TestBeforeTriggerImminentWording(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	m := maint(1, base.AddDate(0, 0, 1))
	s.Reconcile(context.Background(), nil, []maintenance.Maintenance{m})

	clk.Advance(0)
	require.Equal(t, 1, sink.count())
	assert.Contains(t, sink.last().title, "due imminently")
}

func TestDueTodaySuppressesBeforeTrigger(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	// due today at 09:00; base is 08:00
	m := maint(1, base)
	s.Reconcile(context.Background(), nil, []maintenance.Maintenance{m})

	clk.Advance(30 * time.Minute)
	assert.Equal(t, 0, sink.count(), "no before-trigger fire on the due day")

	clk.Advance(30 * time.Minute)
	require.Equal(t, 1, sink.count(), "due-date trigger fires at 09:00")
	assert.Contains(t, sink.last().title, "Maintenance due")
	assert.True(t, s.Shown("maint-1"))
	assert.False(t, s.Shown("1-before-days-5"))
}

func TestOverdueRefiresEverySweep(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)
	ctx := context.Background()

	m := maint(1, base.AddDate(0, 0, -2))
	s.Reconcile(ctx, nil, []maintenance.Maintenance{m})
	require.Equal(t, 1, sink.count())
	assert.Contains(t, sink.last().title, "OVERDUE")

	// next sweep: fires again, shown set does not block it
	s.Reconcile(ctx, nil, []maintenance.Maintenance{m})
	assert.Equal(t, 2, sink.count())
	assert.False(t, s.Shown("1-before-days-5"))

	clk.Advance(0)
	assert.Equal(t, 2, sink.count(), "overdue path arms no timers")
}

func TestDisabledAndCompletedMaintenanceExcluded(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)
	ctx := context.Background()

	off := maint(1, base.AddDate(0, 0, -2))
	off.NotificationEnabled = false
	done := maint(2, base.AddDate(0, 0, -2))
	done.Status = maintenance.StatusCompleted

	s.Reconcile(ctx, nil, []maintenance.Maintenance{off, done})
	clk.Advance(24 * time.Hour)
	assert.Equal(t, 0, sink.count())
}

func TestShownSurvivesRestart(t *testing.T) {
	clk := newFakeClock(base)
	sink := &spySink{}
	state := &MemoryStateStore{}
	ctx := context.Background()

	s := New(Options{Clock: clk, Sink: sink, State: state})
	recs := []notification.Notification{reminder("n1", base.Add(-time.Minute))}
	s.Reconcile(ctx, recs, nil)
	clk.Advance(0)
	require.Equal(t, 1, sink.count())

	// "reload": fresh scheduler over the same persisted state
	s2 := New(Options{Clock: clk, Sink: sink, State: state})
	keys, err := state.LoadShown(ctx)
	require.NoError(t, err)
	for _, k := range keys {
		s2.mu.Lock()
		s2.shown[k] = struct{}{}
		s2.mu.Unlock()
	}
	s2.Reconcile(ctx, recs, nil)
	clk.Advance(time.Minute)
	assert.Equal(t, 1, sink.count(), "already-shown reminder must not re-fire after reload")
}
