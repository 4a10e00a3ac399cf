package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ReleaseEvent announces a change of solution visibility for an assignment.
type ReleaseEvent struct {
	Source       string    `json:"source"`
	AssignmentID uint      `json:"assignment_id"`
	Plugin       string    `json:"plugin"`
	Action       string    `json:"action"`
	Show         bool      `json:"show"`
	ActorID      uint      `json:"actor_id"`
	SentAt       time.Time `json:"sent_at"`
}

// ReleasePublisher fans release events out to other services.
type ReleasePublisher interface {
	Publish(ctx context.Context, event ReleaseEvent) error
}

type releasePublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
}

// NewReleasePublisher publishes to "<base>:solutionsheet" on redis and
// "<base with dots>.solutionsheet" on NATS. Either transport may be nil.
func NewReleasePublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) ReleasePublisher {
	channel := ""
	subject := ""
	if base := strings.TrimSpace(channelBase); base != "" {
		channel = base + ":solutionsheet"
		subject = strings.ReplaceAll(base, ":", ".") + ".solutionsheet"
	}

	return &releasePublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "release_publisher").Logger(),
	}
}

func (p *releasePublisher) Publish(ctx context.Context, event ReleaseEvent) error {
	if event.Source == "" {
		event.Source = p.nodeID
	}
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		p.logger.Warn().Err(err).Uint("assignment_id", event.AssignmentID).Msg("failed to publish release event")
		return err
	}
	return nil
}
