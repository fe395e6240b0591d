// ABOUTME: Now-playing tracker for one Snapcast server
// ABOUTME: Keeps current metadata, stream status, connection health, and history
package nowplaying

import (
	"sync/atomic"
	"time"

	"github.com/harper/snapmeta/internal/domain/notification"
	"github.com/harper/snapmeta/internal/infrastructure/metadata"
	"github.com/harper/snapmeta/internal/infrastructure/ring"
)

const DefaultHistorySize = 32

type Config struct {
	ID          string
	Host        string
	Port        int
	HistorySize int
}

// Snapshot is one now-playing entry.
type Snapshot struct {
	Title    string                `json:"title"`
	ArtURL   string                `json:"art_url,omitempty"`
	Metadata notification.Metadata `json:"metadata"`
	At       time.Time             `json:"at"`
}

type Tracker struct {
	id   string
	host string
	port int

	formatter *metadata.Formatter
	history   *ring.Buffer[Snapshot]

	current   atomic.Pointer[Snapshot]
	status    atomic.Pointer[string]
	statusAt  atomic.Pointer[time.Time]
	connected atomic.Bool
	session   atomic.Pointer[string]
	lastError atomic.Pointer[string]

	now func() time.Time
}

func New(cfg Config, formatter *metadata.Formatter) *Tracker {
	size := cfg.HistorySize
	if size <= 0 {
		size = DefaultHistorySize
	}
	if formatter == nil {
		formatter = metadata.NewFormatter(metadata.BuildConfig{})
	}
	return &Tracker{
		id:        cfg.ID,
		host:      cfg.Host,
		port:      cfg.Port,
		formatter: formatter,
		history:   ring.New[Snapshot](size),
		now:       time.Now,
	}
}

func (t *Tracker) ID() string   { return t.id }
func (t *Tracker) Host() string { return t.host }
func (t *Tracker) Port() int    { return t.port }

// UpdateMetadata records md as the current entry. History only grows when
// the rendered title changes, since Snapcast re-sends metadata on every
// property change (position, volume, ...).
func (t *Tracker) UpdateMetadata(md notification.Metadata) Snapshot {
	snap := Snapshot{
		Title:    t.formatter.Title(md),
		ArtURL:   t.formatter.ArtURL(md),
		Metadata: md,
		At:       t.now(),
	}
	t.current.Store(&snap)

	if last, ok := t.history.Last(); !ok || last.Title != snap.Title {
		t.history.Push(snap)
	}
	return snap
}

// Current returns the latest snapshot, or nil before any metadata arrived.
func (t *Tracker) Current() *Snapshot {
	return t.current.Load()
}

func (t *Tracker) UpdateStatus(status string) {
	now := t.now()
	t.status.Store(&status)
	t.statusAt.Store(&now)
}

func (t *Tracker) Status() string {
	if p := t.status.Load(); p != nil {
		return *p
	}
	return ""
}

func (t *Tracker) StatusUpdatedAt() *time.Time {
	return t.statusAt.Load()
}

// SetConnected records connection health and the session id of the socket
// currently serving this tracker.
func (t *Tracker) SetConnected(connected bool, session string) {
	t.connected.Store(connected)
	t.session.Store(&session)
}

func (t *Tracker) Connected() bool {
	return t.connected.Load()
}

func (t *Tracker) Session() string {
	if p := t.session.Load(); p != nil {
		return *p
	}
	return ""
}

func (t *Tracker) RecordError(err error) {
	msg := err.Error()
	t.lastError.Store(&msg)
}

func (t *Tracker) LastError() string {
	if p := t.lastError.Load(); p != nil {
		return *p
	}
	return ""
}

// History returns recent now-playing entries, oldest first.
func (t *Tracker) History() []Snapshot {
	return t.history.Snapshot()
}
