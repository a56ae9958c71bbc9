package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// NewNATS constructs a publisher that emits on "<subject>.<outcome>".
func NewNATS(log *slog.Logger, nc *nats.Conn, subject string) Publisher {
	return &natsPublisher{log: log, nc: nc, subject: subject}
}

type natsPublisher struct {
	log     *slog.Logger
	nc      *nats.Conn
	subject string
}

func (p *natsPublisher) Publish(_ context.Context, event Event) error {
	if event.Outcome == "" {
		return errors.New("event outcome required")
	}
	body, err := encode(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(Subject(p.subject, event.Outcome), body)
}

func (p *natsPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("nats drain failed", "err", err)
		p.nc.Close()
		return err
	}
	return nil
}

// Subject joins the configured prefix with the outcome.
func Subject(prefix, outcome string) string {
	if prefix == "" {
		return outcome
	}
	return prefix + "." + outcome
}

// encode fills in ID and timestamp before marshaling.
func encode(event Event) ([]byte, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return json.Marshal(event)
}
