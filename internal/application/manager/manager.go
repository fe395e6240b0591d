// ABOUTME: Server manager for Snapcast control client lifecycle and lookup
// ABOUTME: Creates clients and trackers from config and owns the reconnect policy
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harper/snapmeta/internal/application/config"
	"github.com/harper/snapmeta/internal/domain"
	"github.com/harper/snapmeta/internal/domain/notification"
	"github.com/harper/snapmeta/internal/domain/nowplaying"
	"github.com/harper/snapmeta/internal/domain/snapmeta"
	"github.com/harper/snapmeta/internal/infrastructure/frame"
	"github.com/harper/snapmeta/internal/infrastructure/metadata"
)

// Server pairs one control client with the tracker it feeds.
type Server struct {
	Client  *snapmeta.Client
	Tracker *nowplaying.Tracker

	reconnect  bool
	minBackoff time.Duration
	maxBackoff time.Duration

	// disconnected is signalled by the error callback on transport failure.
	disconnected chan struct{}
	log          zerolog.Logger
}

type Manager struct {
	servers map[string]*Server
	order   []string
	mu      sync.RWMutex
	log     zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewFromConfig(cfg *config.Config, log zerolog.Logger) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())

	mgr := &Manager{
		servers: make(map[string]*Server),
		log:     log.With().Str("component", "manager").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, srvCfg := range cfg.Servers {
		srv, err := mgr.newServer(srvCfg)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("server %q: %w", srvCfg.ID, err)
		}
		mgr.servers[srvCfg.ID] = srv
		mgr.order = append(mgr.order, srvCfg.ID)
	}

	return mgr, nil
}

func (m *Manager) newServer(cfg config.ServerConfig) (*Server, error) {
	mode, err := frame.ParseMode(cfg.Framing)
	if err != nil {
		return nil, err
	}

	client, err := snapmeta.New(cfg.Host,
		snapmeta.WithPort(cfg.Port),
		snapmeta.WithFraming(mode),
		snapmeta.WithDialTimeout(time.Duration(cfg.DialTimeoutMs)*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	formatter := metadata.NewFormatter(metadata.BuildConfig{
		Format:              cfg.Build.Format,
		StripSingleQuotes:   cfg.Build.StripSingleQuotes,
		NormalizeWhitespace: cfg.Build.NormalizeWhitespace,
		FallbackKeyOrder:    cfg.Build.FallbackKeyOrder,
	})

	tracker := nowplaying.New(nowplaying.Config{
		ID:          cfg.ID,
		Host:        cfg.Host,
		Port:        client.Port(),
		HistorySize: cfg.HistorySize,
	}, formatter)

	minBackoff := time.Duration(cfg.Reconnect.MinBackoffMs) * time.Millisecond
	if minBackoff <= 0 {
		minBackoff = config.DefaultMinBackoffMs * time.Millisecond
	}
	maxBackoff := time.Duration(cfg.Reconnect.MaxBackoffMs) * time.Millisecond
	if maxBackoff < minBackoff {
		maxBackoff = minBackoff
	}

	srv := &Server{
		Client:       client,
		Tracker:      tracker,
		reconnect:    cfg.Reconnect.On(),
		minBackoff:   minBackoff,
		maxBackoff:   maxBackoff,
		disconnected: make(chan struct{}, 1),
		log:          m.log.With().Str("server", cfg.ID).Str("addr", client.Addr()).Logger(),
	}
	m.subscribe(srv)
	return srv, nil
}

func (m *Manager) subscribe(srv *Server) {
	id := srv.Tracker.ID()

	srv.Client.OnData(func(md notification.Metadata) {
		snap := srv.Tracker.UpdateMetadata(md)
		notificationsTotal.WithLabelValues(id, "data").Inc()
		srv.log.Debug().Str("title", snap.Title).Msg("metadata")
	})

	srv.Client.OnStatus(func(status string) {
		srv.Tracker.UpdateStatus(status)
		notificationsTotal.WithLabelValues(id, "status").Inc()
		srv.log.Info().Str("status", status).Msg("stream status")
	})

	srv.Client.OnError(func(err error) {
		if m.ctx.Err() != nil {
			return
		}
		srv.Tracker.RecordError(err)
		errorsTotal.WithLabelValues(id, errorKind(err)).Inc()
		srv.log.Warn().Err(err).Msg("control client error")

		if domain.IsTransportError(err) {
			select {
			case srv.disconnected <- struct{}{}:
			default:
			}
		}
	})
}

func (m *Manager) Get(id string) *nowplaying.Tracker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if srv := m.servers[id]; srv != nil {
		return srv.Tracker
	}
	return nil
}

// Server returns the client/tracker pair for id, or nil.
func (m *Manager) Server(id string) *Server {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.servers[id]
}

// List returns trackers in config order.
func (m *Manager) List() []*nowplaying.Tracker {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*nowplaying.Tracker, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.servers[id].Tracker)
	}
	return result
}

// Start launches one connection loop per server and returns immediately.
func (m *Manager) Start() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		m.wg.Add(1)
		go m.run(m.servers[id])
	}

	return nil
}

// Shutdown stops every connection loop and closes the clients.
func (m *Manager) Shutdown() error {
	m.cancel()
	m.wg.Wait()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, id := range m.order {
		srv := m.servers[id]
		if err := srv.Client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
		srv.Tracker.SetConnected(false, srv.Tracker.Session())
		connectedGauge.WithLabelValues(id).Set(0)
	}

	return errors.Join(errs...)
}

// run opens srv and, when reconnecting is enabled, reopens it with
// exponential backoff after every transport failure.
func (m *Manager) run(srv *Server) {
	defer m.wg.Done()

	id := srv.Tracker.ID()
	backoff := srv.minBackoff

	for {
		select {
		case <-srv.disconnected:
		default:
		}

		session := uuid.NewString()
		if err := srv.Client.Open(m.ctx); err == nil {
			srv.Tracker.SetConnected(true, session)
			connectedGauge.WithLabelValues(id).Set(1)
			srv.log.Info().Str("session", session).Msg("connected")
			backoff = srv.minBackoff

			select {
			case <-m.ctx.Done():
				return
			case <-srv.disconnected:
			}

			srv.Tracker.SetConnected(false, session)
			connectedGauge.WithLabelValues(id).Set(0)
		}

		if !srv.reconnect || m.ctx.Err() != nil {
			return
		}

		reconnectsTotal.WithLabelValues(id).Inc()
		srv.log.Info().Dur("backoff", backoff).Msg("reconnecting")

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > srv.maxBackoff {
			backoff = srv.maxBackoff
		}
	}
}
