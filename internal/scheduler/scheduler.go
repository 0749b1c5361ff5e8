package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"cmms/internal/alert"
	"cmms/internal/maintenance"
	"cmms/internal/notification"
)

// GraceWindow absorbs clock jitter right after startup: a reminder whose
// scheduled time passed less than this long ago is deferred by the full
// window instead of firing the instant the process comes up.
const GraceWindow = 2 * time.Second

// Source supplies the live record collections. Read-only from here.
type Source interface {
	Reminders(ctx context.Context) ([]notification.Notification, error)
	DueMaintenance(ctx context.Context) ([]maintenance.Maintenance, error)
}

// Options for New. Clock, Sink and State are required; Bridge may be nil.
type Options struct {
	Clock  Clock
	Sink   alert.Sink
	Bridge alert.Bridge
	State  StateStore
	Source Source

	DueHour      int           // local hour for due-date alerts, default 9
	ReminderTick time.Duration // fine-grained reminder due-check
	OverdueSweep time.Duration // coarse overdue maintenance sweep

	// PreSweep runs before each overdue sweep (e.g. flipping maintenance
	// statuses to overdue). May be nil.
	PreSweep func(ctx context.Context)
}

// plan is one computed trigger: what to show, when, to whom.
type plan struct {
	key        string
	title      string
	body       string
	delay      time.Duration
	fireAt     time.Time
	overdue    bool // urgent, re-fires every sweep, bypasses the shown set
	recipients []string
}

// Scheduler owns the timer map and the shown set. At most one live timer
// exists per composite key; reconciliation cancels stale timers before
// arming new ones and is idempotent.
type Scheduler struct {
	clock  Clock
	sink   alert.Sink
	bridge alert.Bridge
	state  StateStore
	source Source

	dueHour      int
	reminderTick time.Duration
	overdueSweep time.Duration
	preSweep     func(ctx context.Context)

	mu      sync.Mutex
	timers  map[string]Timer
	pending map[string]plan
	shown   map[string]struct{}

	poke chan struct{}
}

func New(opts Options) *Scheduler {
	if opts.DueHour == 0 {
		opts.DueHour = 9
	}
	if opts.ReminderTick <= 0 {
		opts.ReminderTick = time.Second
	}
	if opts.OverdueSweep <= 0 {
		opts.OverdueSweep = 5 * time.Minute
	}
	if opts.State == nil {
		opts.State = &MemoryStateStore{}
	}
	return &Scheduler{
		clock:        opts.Clock,
		sink:         opts.Sink,
		bridge:       opts.Bridge,
		state:        opts.State,
		source:       opts.Source,
		dueHour:      opts.DueHour,
		reminderTick: opts.ReminderTick,
		overdueSweep: opts.OverdueSweep,
		preSweep:     opts.PreSweep,
		timers:       map[string]Timer{},
		pending:      map[string]plan{},
		shown:        map[string]struct{}{},
		poke:         make(chan struct{}, 1),
	}
}

// Shown reports whether a composite key already fired. Safe for concurrent
// use; the dispatch worker consults it before delivering a queued job.
func (s *Scheduler) Shown(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.shown[key]
	return ok
}

// Poke requests an immediate reconciliation, typically after a mutation.
// Never blocks.
func (s *Scheduler) Poke() {
	select {
	case s.poke <- struct{}{}:
	default:
	}
}

// Run loads persisted state, reconciles once, then loops on the reminder
// tick, the overdue sweep and data-change pokes until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	if keys, err := s.state.LoadShown(ctx); err != nil {
		log.Warn().Err(err).Msg("scheduler: load shown state")
	} else {
		s.mu.Lock()
		for _, k := range keys {
			s.shown[k] = struct{}{}
		}
		s.mu.Unlock()
	}

	s.Sweep(ctx)

	remTick := time.NewTicker(s.reminderTick)
	defer remTick.Stop()
	sweep := time.NewTicker(s.overdueSweep)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopAll()
			return
		case <-remTick.C:
			s.ReconcileReminders(ctx)
		case <-sweep.C:
			s.Sweep(ctx)
		case <-s.poke:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs the optional pre-sweep hook and a full reconciliation over
// both record collections. Overdue maintenances re-alert here every time.
func (s *Scheduler) Sweep(ctx context.Context) {
	if s.preSweep != nil {
		s.preSweep(ctx)
	}

	reminders, err := s.source.Reminders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: fetch reminders")
		return
	}
	maints, err := s.source.DueMaintenance(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: fetch maintenance")
		return
	}
	s.Reconcile(ctx, reminders, maints)
}

// ReconcileReminders refreshes only the reminder triggers. Maintenance
// timers are left alone so the cheap 1s tick does not hammer those tables.
func (s *Scheduler) ReconcileReminders(ctx context.Context) {
	reminders, err := s.source.Reminders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: fetch reminders")
		return
	}
	plans := map[string]plan{}
	now := s.clock.Now()
	for _, n := range reminders {
		s.planReminder(plans, n, now)
	}
	s.apply(ctx, plans, func(key string) bool { return isNotifKey(key) })
}

// Reconcile rebuilds the timer set from the given records. Idempotent:
// running it twice with the same inputs arms nothing new and fires nothing
// twice (overdue urgents excepted, per policy).
func (s *Scheduler) Reconcile(ctx context.Context, reminders []notification.Notification, maints []maintenance.Maintenance) {
	now := s.clock.Now()
	plans := map[string]plan{}

	for _, n := range reminders {
		s.planReminder(plans, n, now)
	}
	for _, m := range maints {
		s.planMaintenance(plans, m, now)
	}

	s.apply(ctx, plans, func(string) bool { return true })
}

// apply is the single reconciliation algorithm all trigger paths go
// through. scope limits which live keys may be treated as stale.
func (s *Scheduler) apply(ctx context.Context, plans map[string]plan, scope func(key string) bool) {
	var overdue []plan

	s.mu.Lock()

	// cancel timers whose key left the relevant set
	for key, t := range s.timers {
		if !scope(key) {
			continue
		}
		if _, ok := plans[key]; ok {
			continue
		}
		t.Stop()
		delete(s.timers, key)
		delete(s.pending, key)
		if s.bridge != nil {
			if err := s.bridge.Cancel(ctx, Hash31(key)); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("scheduler: bridge cancel")
			}
		}
	}

	// arm what is relevant, not live and not yet shown
	for key, p := range plans {
		if p.overdue {
			overdue = append(overdue, p)
			continue
		}
		if _, live := s.timers[key]; live {
			continue
		}
		if _, done := s.shown[key]; done {
			continue
		}
		s.arm(ctx, p)
	}

	s.mu.Unlock()

	// overdue urgents bypass timers and the shown set entirely
	for _, p := range overdue {
		s.deliver(ctx, p)
	}
}

// arm must be called with the lock held.
func (s *Scheduler) arm(ctx context.Context, p plan) {
	key := p.key
	s.pending[key] = p
	s.timers[key] = s.clock.AfterFunc(p.delay, func() {
		s.fire(context.Background(), key)
	})
	if s.bridge != nil {
		if err := s.bridge.Schedule(ctx, Hash31(key), key, p.title, p.body, p.fireAt); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("scheduler: bridge schedule")
		}
	}
}

// fire runs when a timer elapses. The key is marked shown exactly once and
// the shown set is persisted best-effort.
func (s *Scheduler) fire(ctx context.Context, key string) {
	s.mu.Lock()
	p, ok := s.pending[key]
	delete(s.pending, key)
	delete(s.timers, key)
	if !ok {
		s.mu.Unlock()
		return
	}
	if _, done := s.shown[key]; done {
		s.mu.Unlock()
		return
	}
	s.shown[key] = struct{}{}
	snapshot := make([]string, 0, len(s.shown))
	for k := range s.shown {
		snapshot = append(snapshot, k)
	}
	s.mu.Unlock()

	s.deliver(ctx, p)

	if err := s.state.SaveShown(ctx, snapshot); err != nil {
		log.Warn().Err(err).Msg("scheduler: persist shown state")
	}
}

func (s *Scheduler) deliver(ctx context.Context, p plan) {
	recipients := p.recipients
	if len(recipients) == 0 {
		recipients = []string{""}
	}
	for _, r := range recipients {
		if err := s.sink.Show(ctx, r, p.title, p.body); err != nil {
			log.Warn().Err(err).Str("key", p.key).Str("recipient", r).Msg("scheduler: sink")
		}
	}
}

func (s *Scheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
		delete(s.pending, key)
	}
}

func (s *Scheduler) planReminder(plans map[string]plan, n notification.Notification, now time.Time) {
	if n.IsCompleted {
		return
	}
	if n.ScheduledAt.IsZero() {
		return
	}

	recips, err := notification.ParseRecipients(n.Recipients)
	if err != nil {
		log.Debug().Str("id", n.ID).Msg("scheduler: unparseable recipients, creator only")
	}
	if n.CreatedBy != "" && !contains(recips, n.CreatedBy) {
		recips = append(recips, n.CreatedBy)
	}

	var delay time.Duration
	past := now.Sub(n.ScheduledAt)
	switch {
	case past < 0:
		delay = -past
	case past <= GraceWindow:
		delay = GraceWindow
	default:
		delay = 0
	}

	plans[notifKey(n.ID)] = plan{
		key:        notifKey(n.ID),
		title:      n.Title,
		body:       n.Body,
		delay:      delay,
		fireAt:     now.Add(delay),
		recipients: recips,
	}
}

func (s *Scheduler) planMaintenance(plans map[string]plan, m maintenance.Maintenance, now time.Time) {
	if m.Status == maintenance.StatusCompleted || !m.NotificationEnabled {
		return
	}
	if m.NextDueDate.IsZero() {
		return
	}

	loc := now.Location()
	due := m.NextDueDate
	dueAt := time.Date(due.Year(), due.Month(), due.Day(), s.dueHour, 0, 0, 0, loc)
	dd := daysDiff(now, due)

	subject := m.Title
	if m.EquipmentName != "" {
		subject = fmt.Sprintf("%s (%s)", m.Title, m.EquipmentName)
	}

	// due-date trigger, fixed local hour on the due day. Once the due day
	// is behind us the overdue path owns alerting.
	if dd >= 0 {
		delay := dueAt.Sub(now)
		if delay < 0 {
			delay = 0
		}
		key := maintKey(m.ID)
		plans[key] = plan{
			key:    key,
			title:  "Maintenance due: " + subject,
			body:   fmt.Sprintf("Maintenance %q is due today.", m.Title),
			delay:  delay,
			fireAt: dueAt,
		}
	}

	// before-due trigger
	th := thresholdDays(m.NotificationTimeBeforeValue, m.NotificationTimeBeforeUnit)
	if th <= 0 {
		return
	}
	bkey := beforeKey(m.ID, m.NotificationTimeBeforeUnit, m.NotificationTimeBeforeValue)

	switch {
	case dd < 0:
		// overdue: urgent, re-fired every sweep while open
		plans[bkey] = plan{
			key:     bkey,
			title:   "OVERDUE: " + subject,
			body:    fmt.Sprintf("Maintenance %q is %d day(s) overdue.", m.Title, -dd),
			overdue: true,
		}
	case dd == 0:
		// due today: the due-date trigger owns this day
	case dd <= th:
		body := fmt.Sprintf("Maintenance %q is due in %d day(s).", m.Title, dd)
		title := "Upcoming maintenance: " + subject
		if dd <= 1 {
			title = "Maintenance due imminently: " + subject
		}
		plans[bkey] = plan{
			key:    bkey,
			title:  title,
			body:   body,
			delay:  0,
			fireAt: now,
		}
	}
}

// thresholdDays converts the before-due amount into whole days, rounding
// hours up.
func thresholdDays(value int, unit string) int {
	if value <= 0 {
		return 0
	}
	switch unit {
	case maintenance.UnitHours:
		return (value + 23) / 24
	case maintenance.UnitDays:
		return value
	case maintenance.UnitWeeks:
		return value * 7
	}
	return 0
}

// daysDiff is the whole-day distance between today and the due date, both
// normalized to midnight. Negative means overdue.
func daysDiff(now, due time.Time) int {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dueMid := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc)
	return int(dueMid.Sub(today) / (24 * time.Hour))
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
