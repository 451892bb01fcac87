package nats

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/infrastructure/resilience"
)

// Client submits documents to the screening workers over request/reply.
type Client struct {
	conn     *nats.Conn
	subject  string
	timeout  time.Duration
	executor *resilience.Executor
}

func NewClient(conn *nats.Conn, subject string, timeout time.Duration, executor *resilience.Executor) *Client {
	if subject == "" {
		subject = DefaultSubject
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{conn: conn, subject: subject, timeout: timeout, executor: executor}
}

// Screen implements ports.ResumeScreener against a remote worker.
func (c *Client) Screen(ctx context.Context, filename string, payload []byte) (*domain.Screening, error) {
	var screening *domain.Screening
	call := func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		msg := nats.NewMsg(c.subject)
		msg.Header.Set(FilenameHeader, filename)
		msg.Data = payload

		reply, err := c.conn.RequestMsgWithContext(reqCtx, msg)
		if err != nil {
			return err
		}
		screening, err = decodeReply(reply.Data)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "nats.screen_request", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.WrapError(domain.ErrTemporary, "nats screen request", err)
		}
		return nil, wrapTemporaryIfNeeded("nats screen request", err)
	}
	return screening, nil
}
