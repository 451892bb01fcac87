package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/ports"
)

// RequestObserver is notified around each handled request.
type RequestObserver interface {
	StartRequest(payloadSize int)
	FinishRequest(service string, duration time.Duration, err error)
}

type Server struct {
	conn     *nats.Conn
	subject  string
	screener ports.ResumeScreener
	observer RequestObserver
	logger   *slog.Logger
	service  string
}

func NewServer(conn *nats.Conn, subject string, screener ports.ResumeScreener, observer RequestObserver, logger *slog.Logger) *Server {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		conn:     conn,
		subject:  subject,
		screener: screener,
		observer: observer,
		logger:   logger,
		service:  "worker",
	}
}

// Serve answers screening requests until ctx is cancelled, then drains the subscription.
func (s *Server) Serve(ctx context.Context) error {
	sub, err := s.conn.QueueSubscribe(s.subject, QueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		reply := s.handle(ctx, msg.Header.Get(FilenameHeader), msg.Data)
		if err := msg.Respond(reply); err != nil {
			s.logger.Error("nats_respond_failed", "subject", s.subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := s.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	s.logger.Info("worker_subscribed", "subject", s.subject, "queue", QueueGroup)

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := s.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, filename string, payload []byte) []byte {
	started := time.Now()
	if s.observer != nil {
		s.observer.StartRequest(len(payload))
	}

	var (
		screening *domain.Screening
		err       error
	)
	if filename == "" {
		err = domain.WrapError(domain.ErrInvalidInput, "screen request", fmt.Errorf("missing %s header", FilenameHeader))
	} else {
		handlerCtx, cancel := context.WithCancel(ctx)
		screening, err = s.screener.Screen(handlerCtx, filename, payload)
		cancel()
	}

	if s.observer != nil {
		s.observer.FinishRequest(s.service, time.Since(started), err)
	}
	if err != nil {
		return encodeReply(nil, err)
	}
	out := screening.WithoutText()
	return encodeReply(&out, nil)
}
