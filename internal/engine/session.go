package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/identity"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/wsutils"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

type Session struct {
	id       uuid.UUID
	engine   *Engine
	token    *identity.ParticipantToken
	target   string
	strategy protocol.Strategy
	local    protocol.ParticipantInfo
	logger   *slog.Logger

	renderersMu sync.Mutex
	renderers   []protocol.Renderer

	joined *atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelCauseFunc
	conn    *connection
	desired []protocol.LocalStream
}

var _ protocol.Session = (*Session)(nil)

func (s *Session) AddRenderer(r protocol.Renderer) {
	s.renderersMu.Lock()
	defer s.renderersMu.Unlock()
	s.renderers = append(s.renderers, r)
}

// emit delivers fn to every renderer on the main loop.
func (s *Session) emit(fn func(protocol.Renderer)) {
	s.renderersMu.Lock()
	renderers := append([]protocol.Renderer(nil), s.renderers...)
	s.renderersMu.Unlock()

	if err := s.engine.loop.Post(func() {
		for _, r := range renderers {
			fn(r)
		}
	}); err != nil {
		s.logger.Debug("renderer event dropped", slog.String("err", err.Error()))
	}
}

// query runs fn on the main loop and waits for it.
func (s *Session) query(ctx context.Context, fn func()) error {
	return s.engine.loop.Call(ctx, fn)
}

// Join starts connecting in the background. Progress is reported through
// ConnectionStateChanged.
func (s *Session) Join() error {
	if s.token.Expired(s.engine.now()) {
		return ErrTokenExpired
	}
	if !s.joined.CAS(false, true) {
		return ErrAlreadyJoined
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("join stage", slog.String("target", s.target))
	s.emit(func(r protocol.Renderer) {
		r.ConnectionStateChanged(protocol.ConnectionStateConnecting, nil)
	})

	go s.run(ctx, cancel)
	return nil
}

// Leave is a no-op when nothing is joined. The caller may still see the
// session as connected while the disconnect is on its way.
func (s *Session) Leave() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil || !s.joined.Load() {
		s.logger.Debug("leave skipped, session not joined")
		return nil
	}

	s.logger.Info("leave stage")
	cancel(ErrLeaveRequested)
	return nil
}

// RefreshStrategy asks the strategy again what should be published. The
// strategy is queried on the main loop, so the refresh itself is async.
func (s *Session) RefreshStrategy() {
	go func() {
		if err := s.refresh(context.Background()); err != nil {
			s.logger.Debug("strategy refresh skipped", slog.String("err", err.Error()))
		}
	}()
}

func (s *Session) refresh(ctx context.Context) error {
	var (
		publish bool
		streams []protocol.LocalStream
	)
	if err := s.query(ctx, func() {
		publish = s.strategy.ShouldPublishParticipant(s.local)
		if publish {
			streams = s.strategy.StreamsToPublishForParticipant(s.local)
		}
	}); err != nil {
		return err
	}

	if !s.token.AllowPublish {
		publish = false
	}
	if !publish {
		streams = nil
	}

	s.mu.Lock()
	s.desired = streams
	conn := s.conn
	s.mu.Unlock()

	s.logger.Debug("strategy refreshed", slog.Bool("publish", publish), slog.Int("streams", len(streams)))
	if conn != nil {
		conn.publisher.update(streams)
	}
	return nil
}

func (s *Session) run(ctx context.Context, cancel context.CancelCauseFunc) {
	// The first cancel cause wins: a leave or a failed peer connection is
	// reported instead of the socket error it provoked.
	cancel(s.connect(ctx, cancel))
	err := context.Cause(ctx)
	if errors.Is(err, ErrLeaveRequested) {
		err = nil
	}

	s.mu.Lock()
	s.cancel = nil
	s.conn = nil
	s.mu.Unlock()
	s.joined.Store(false)

	if err != nil {
		s.logger.Warn("stage disconnected", slog.String("err", err.Error()))
	} else {
		s.logger.Info("stage left")
	}
	s.emit(func(r protocol.Renderer) {
		r.ConnectionStateChanged(protocol.ConnectionStateDisconnected, err)
	})
}

func (s *Session) connect(ctx context.Context, cancel context.CancelCauseFunc) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token.Raw)

	ws, _, err := s.engine.dialer.DialContext(ctx, s.target, header)
	if err != nil {
		return errors.Join(ErrDial, err)
	}
	w := wsutils.NewThreadSafeWriter(ws)
	defer w.Close()

	pc, stats, err := s.engine.newPeerConnection()
	if err != nil {
		return err
	}

	s.mu.Lock()
	desired := s.desired
	s.mu.Unlock()

	conn := newConnection(newConnection_Params{
		Context:        ctx,
		Cancel:         cancel,
		Session:        s,
		PeerConnection: pc,
		Writer:         w,
		Stats:          stats,
		Desired:        desired,
	})
	defer conn.close()

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		_ = w.CloseGracefully("leave")
		return nil
	})
	g.Go(func() error {
		return conn.listen(gctx)
	})
	return g.Wait()
}

func newSession(e *Engine, token *identity.ParticipantToken, target string, strategy protocol.Strategy) *Session {
	id := uuid.New()
	return &Session{
		id:       id,
		engine:   e,
		token:    token,
		target:   target,
		strategy: strategy,
		local: protocol.ParticipantInfo{
			ID:      token.ParticipantID,
			UserID:  token.ParticipantID,
			IsLocal: true,
			Attributes: map[string]string{
				"topic": token.Topic,
			},
		},
		logger: e.logger.With(
			slog.String("session", id.String()),
			slog.String("participant", token.ParticipantID),
		),
		joined: atomic.NewBool(false),
	}
}
