package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sundaykids/rollcall/internal/sheets"
)

// RemoteStore is the subset of the remote tabular store client the
// cache needs. Satisfied by *sheets.Client.
type RemoteStore interface {
	Read(ctx context.Context, sheet, rng string) ([][]string, error)
	Write(ctx context.Context, sheet, rng string, rows [][]string) error
	Append(ctx context.Context, sheet string, rows [][]string) error
}

// Tables names the three remote tables and the fixed header offset.
type Tables struct {
	Guardians  string
	Children   string
	Events     string
	HeaderRows int
}

// DefaultTables returns the conventional tab names.
func DefaultTables() Tables {
	return Tables{Guardians: "Parents", Children: "Children", Events: "SignInOut", HeaderRows: 1}
}

// Retention bounds the in-memory event projection. Pruning never
// touches the remote store.
type Retention struct {
	MaxEventAge time.Duration // drop events older than this; 0 disables
	MaxEvents   int           // cap on retained events; 0 disables
}

// DefaultMaxAge is the freshness window after which the projection is
// considered stale.
const DefaultMaxAge = 10 * time.Minute

// Cache is the in-memory projection of the three remote collections.
//
// Reads are served from memory; mutations patch memory optimistically
// and write through to the remote store. The optimistic patch assumes
// this client is the only writer between an append and the next full
// reload, which is false under concurrent multi-device use; LoadAll is
// the only operation that repairs that drift, so callers re-trigger it
// on view-relevant navigation and periodically (see RefreshIfNeeded).
//
// A mutex serializes all operations. Remote calls from other devices
// are not coordinated at all: no locking, no concurrency token.
type Cache struct {
	mu        sync.Mutex
	remote    RemoteStore
	tables    Tables
	clock     Clock
	maxAge    time.Duration
	retention Retention

	guardians []Guardian
	children  []Child
	events    []AttendanceEvent

	// eventRows counts remote event rows (loaded plus optimistically
	// appended) independently of the pruned in-memory slice, so id
	// synthesis stays aligned with the sheet after pruning.
	eventRows int

	gLayout guardianLayout
	cLayout childLayout
	eLayout eventLayout

	lastLoad time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the wall clock. Used by tests.
func WithClock(c Clock) Option {
	return func(ca *Cache) { ca.clock = c }
}

// WithMaxAge overrides the freshness window.
func WithMaxAge(d time.Duration) Option {
	return func(ca *Cache) { ca.maxAge = d }
}

// WithRetention sets the in-memory event retention policy.
func WithRetention(r Retention) Option {
	return func(ca *Cache) { ca.retention = r }
}

// New creates an empty cache. Call LoadAll before serving reads.
func New(remote RemoteStore, tables Tables, opts ...Option) *Cache {
	c := &Cache{
		remote:  remote,
		tables:  tables,
		clock:   SystemClock(),
		maxAge:  DefaultMaxAge,
		gLayout: guardianExtended,
		cLayout: childExtended,
		eLayout: eventExtended,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadAll reads the three tables in parallel and fully replaces the
// in-memory collections. This is the only operation that repairs drift
// caused by other devices' writes, deletions, or failed replays.
func (c *Cache) LoadAll(ctx context.Context) error {
	var gRows, cRows, eRows [][]string

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		gRows, err = c.remote.Read(ctx, c.tables.Guardians, "")
		return err
	})
	g.Go(func() (err error) {
		cRows, err = c.remote.Read(ctx, c.tables.Children, "")
		return err
	})
	g.Go(func() (err error) {
		eRows, err = c.remote.Read(ctx, c.tables.Events, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load projection: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.gLayout = detectGuardianLayout(headerOf(gRows, c.tables.HeaderRows))
	c.cLayout = detectChildLayout(headerOf(cRows, c.tables.HeaderRows))
	c.eLayout = detectEventLayout(headerOf(eRows, c.tables.HeaderRows))

	offset := c.tables.HeaderRows

	c.guardians = c.guardians[:0]
	for i, row := range dataRows(gRows, offset) {
		c.guardians = append(c.guardians, parseGuardian(i+offset+1, row, c.gLayout))
	}

	c.children = c.children[:0]
	for i, row := range dataRows(cRows, offset) {
		c.children = append(c.children, parseChild(i+offset+1, row, c.cLayout))
	}

	c.events = c.events[:0]
	for i, row := range dataRows(eRows, offset) {
		c.events = append(c.events, parseEvent(i+offset+1, row, c.eLayout))
	}
	c.eventRows = len(c.events)

	now := c.clock.Now()
	c.pruneEventsLocked(now)
	c.lastLoad = now

	slog.Info("projection loaded",
		"guardians", len(c.guardians),
		"children", len(c.children),
		"events", len(c.events))
	return nil
}

func headerOf(rows [][]string, headerRows int) []string {
	if headerRows == 0 || len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func dataRows(rows [][]string, offset int) [][]string {
	if len(rows) <= offset {
		return nil
	}
	return rows[offset:]
}

// patchable reports whether the in-memory projection should reflect a
// mutation given its remote outcome. A queued (unavailable) write will
// converge once the offline log drains, so the projection patches
// ahead of it; a rejected write was neither applied nor queued, so
// patching would show state that will never converge.
func patchable(err error) bool {
	return err == nil || sheets.IsUnavailable(err)
}

// CreateGuardian appends a guardian row remotely and patches the
// projection with a synthesized row-index id, without a full reload.
// The returned error may be non-nil alongside a valid id when the
// write was queued for offline replay.
func (c *Cache) CreateGuardian(ctx context.Context, g Guardian) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g.Name == "" {
		return 0, fmt.Errorf("%w: guardian name", ErrValidation)
	}

	now := c.clock.Now()
	g.RegistrationDate = FormatDate(now)
	g.LastUpdated = FormatDate(now)

	err := c.remote.Append(ctx, c.tables.Guardians, [][]string{guardianRow(g, c.gLayout)})
	if !patchable(err) {
		return 0, err
	}

	g.ID = len(c.guardians) + c.tables.HeaderRows + 1
	c.guardians = append(c.guardians, g)
	slog.Debug("guardian created", "id", g.ID, "queued", err != nil)
	return g.ID, err
}

// CreateChild appends a child row remotely and patches the projection.
// The primary guardian must exist; the designated collector defaults
// to the guardian names when left blank.
func (c *Cache) CreateChild(ctx context.Context, ch Child) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch.FirstName == "" {
		return 0, fmt.Errorf("%w: child first name", ErrValidation)
	}
	g, err := c.guardianByIDLocked(ch.GuardianID)
	if err != nil {
		return 0, fmt.Errorf("primary guardian %d: %w", ch.GuardianID, ErrNotFound)
	}
	if ch.Collector == "" {
		ch.Collector = g.Name
		if g2, err := c.guardianByIDLocked(ch.Guardian2ID); err == nil {
			ch.Collector = g.Name + " & " + g2.Name
		}
	}

	now := c.clock.Now()
	ch.RegistrationDate = FormatDate(now)
	ch.LastUpdated = FormatDate(now)

	row := childRow(ch, c.cLayout, ageCell(ch.DateOfBirth, now))
	rerr := c.remote.Append(ctx, c.tables.Children, [][]string{row})
	if !patchable(rerr) {
		return 0, rerr
	}

	ch.ID = len(c.children) + c.tables.HeaderRows + 1
	c.children = append(c.children, ch)
	slog.Debug("child created", "id", ch.ID, "queued", rerr != nil)
	return ch.ID, rerr
}

// UpdateGuardian overwrites the record's row remotely and patches the
// matching in-memory record. The original registration date is
// preserved unless the caller explicitly supplies one.
func (c *Cache) UpdateGuardian(ctx context.Context, g Guardian) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.guardianIndexLocked(g.ID)
	if err != nil {
		return err
	}
	if g.Name == "" {
		return fmt.Errorf("%w: guardian name", ErrValidation)
	}
	if g.RegistrationDate == "" {
		g.RegistrationDate = c.guardians[i].RegistrationDate
	}
	g.LastUpdated = FormatDate(c.clock.Now())

	rng := rowRange(g.ID, c.gLayout.width)
	rerr := c.remote.Write(ctx, c.tables.Guardians, rng, [][]string{guardianRow(g, c.gLayout)})
	if !patchable(rerr) {
		return rerr
	}

	c.guardians[i] = g
	return rerr
}

// UpdateChild overwrites the record's row remotely and patches the
// matching in-memory record, preserving the original registration date
// unless explicitly supplied. The Age cell is recomputed from the date
// of birth, never copied forward.
func (c *Cache) UpdateChild(ctx context.Context, ch Child) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.childIndexLocked(ch.ID)
	if err != nil {
		return err
	}
	if ch.FirstName == "" {
		return fmt.Errorf("%w: child first name", ErrValidation)
	}
	if _, err := c.guardianByIDLocked(ch.GuardianID); err != nil {
		return fmt.Errorf("primary guardian %d: %w", ch.GuardianID, ErrNotFound)
	}
	if ch.RegistrationDate == "" {
		ch.RegistrationDate = c.children[i].RegistrationDate
	}
	now := c.clock.Now()
	ch.LastUpdated = FormatDate(now)

	rng := rowRange(ch.ID, c.cLayout.width)
	row := childRow(ch, c.cLayout, ageCell(ch.DateOfBirth, now))
	rerr := c.remote.Write(ctx, c.tables.Children, rng, [][]string{row})
	if !patchable(rerr) {
		return rerr
	}

	c.children[i] = ch
	return rerr
}

// RemoveGuardian blanks the record's row rather than deleting it, so
// the row-index identity of every later record is preserved.
func (c *Cache) RemoveGuardian(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.guardianIndexLocked(id)
	if err != nil {
		return err
	}

	rng := rowRange(id, c.gLayout.width)
	rerr := c.remote.Write(ctx, c.tables.Guardians, rng, [][]string{make([]string, c.gLayout.width)})
	if !patchable(rerr) {
		return rerr
	}

	c.guardians[i] = Guardian{ID: id}
	return rerr
}

// RemoveChild blanks the record's row. See RemoveGuardian.
func (c *Cache) RemoveChild(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.childIndexLocked(id)
	if err != nil {
		return err
	}

	rng := rowRange(id, c.cLayout.width)
	rerr := c.remote.Write(ctx, c.tables.Children, rng, [][]string{make([]string, c.cLayout.width)})
	if !patchable(rerr) {
		return rerr
	}

	c.children[i] = Child{ID: id}
	return rerr
}

// SignIn records a new open session for the child: current timestamp,
// current calendar date, and a name snapshot copied from the child
// record at this instant.
func (c *Cache) SignIn(ctx context.Context, childID int) (AttendanceEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signInLocked(ctx, childID)
}

func (c *Cache) signInLocked(ctx context.Context, childID int) (AttendanceEvent, error) {
	ch, err := c.childByIDLocked(childID)
	if err != nil {
		return AttendanceEvent{}, err
	}

	now := c.clock.Now()
	ev := AttendanceEvent{
		SignInTimestamp: FormatTimestamp(now),
		ChildID:         childID,
		GuardianID:      ch.GuardianID,
		Guardian2ID:     ch.Guardian2ID,
		ChildFullName:   ch.FullName(),
		Date:            FormatDate(now),
	}

	rerr := c.remote.Append(ctx, c.tables.Events, [][]string{eventRow(ev, c.eLayout)})
	if !patchable(rerr) {
		return AttendanceEvent{}, rerr
	}

	ev.ID = c.eventRows + c.tables.HeaderRows + 1
	c.eventRows++
	c.events = append(c.events, ev)
	slog.Debug("signed in", "child", childID, "event", ev.ID, "queued", rerr != nil)
	return ev, rerr
}

// SignOut closes the child's open session for today. Only the sign-out
// cell is overwritten remotely, so concurrent edits to other columns
// of the row are not clobbered. Matching is same-day only: sessions
// left open across midnight need a fresh sign-in and are left for
// manual correction.
func (c *Cache) SignOut(ctx context.Context, childID int) (AttendanceEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signOutLocked(ctx, childID)
}

func (c *Cache) signOutLocked(ctx context.Context, childID int) (AttendanceEvent, error) {
	now := c.clock.Now()
	today := FormatDate(now)

	idx := -1
	for i, ev := range c.events {
		if ev.ChildID == childID && ev.Open() && SameDay(ev.Date, today) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return AttendanceEvent{}, fmt.Errorf("child %d: %w", childID, ErrNoOpenSession)
	}

	ts := FormatTimestamp(now)
	ev := c.events[idx]
	rng := columnLetter(c.eLayout.signOut) + strconv.Itoa(ev.ID)
	rerr := c.remote.Write(ctx, c.tables.Events, rng, [][]string{{ts}})
	if !patchable(rerr) {
		return AttendanceEvent{}, rerr
	}

	c.events[idx].SignOutTimestamp = ts
	slog.Debug("signed out", "child", childID, "event", ev.ID, "queued", rerr != nil)
	return c.events[idx], rerr
}

// Guardians returns the active (non-tombstoned) guardians in row order.
func (c *Cache) Guardians() []Guardian {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Guardian, 0, len(c.guardians))
	for _, g := range c.guardians {
		if !g.Tombstoned() {
			out = append(out, g)
		}
	}
	return out
}

// Children returns the active (non-tombstoned) children in row order.
func (c *Cache) Children() []Child {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Child, 0, len(c.children))
	for _, ch := range c.children {
		if !ch.Tombstoned() {
			out = append(out, ch)
		}
	}
	return out
}

// Events returns the retained attendance events in row order.
func (c *Cache) Events() []AttendanceEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]AttendanceEvent, len(c.events))
	copy(out, c.events)
	return out
}

// GuardianByID returns the guardian with the given row-index id.
func (c *Cache) GuardianByID(id int) (Guardian, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guardianByIDLocked(id)
}

// ChildByID returns the child with the given row-index id.
func (c *Cache) ChildByID(id int) (Child, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.childByIDLocked(id)
}

// ChildrenOfGuardian returns the children referencing the guardian as
// primary or secondary.
func (c *Cache) ChildrenOfGuardian(guardianID int) []Child {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Child
	for _, ch := range c.children {
		if ch.Tombstoned() {
			continue
		}
		if ch.GuardianID == guardianID || (ch.Guardian2ID != 0 && ch.Guardian2ID == guardianID) {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Cache) guardianIndexLocked(id int) (int, error) {
	for i, g := range c.guardians {
		if g.ID == id && !g.Tombstoned() {
			return i, nil
		}
	}
	return 0, fmt.Errorf("guardian %d: %w", id, ErrNotFound)
}

func (c *Cache) guardianByIDLocked(id int) (Guardian, error) {
	i, err := c.guardianIndexLocked(id)
	if err != nil {
		return Guardian{}, err
	}
	return c.guardians[i], nil
}

func (c *Cache) childIndexLocked(id int) (int, error) {
	for i, ch := range c.children {
		if ch.ID == id && !ch.Tombstoned() {
			return i, nil
		}
	}
	return 0, fmt.Errorf("child %d: %w", id, ErrNotFound)
}

func (c *Cache) childByIDLocked(id int) (Child, error) {
	i, err := c.childIndexLocked(id)
	if err != nil {
		return Child{}, err
	}
	return c.children[i], nil
}
