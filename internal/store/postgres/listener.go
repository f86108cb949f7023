package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"

	"tasklist/internal/model"
	"tasklist/internal/realtime"
	"tasklist/internal/store/sqlstore"
)

// Listener turns NOTIFY payloads from the tasks trigger into changes. It
// holds one dedicated connection and reconnects with backoff when it drops.
type Listener struct {
	dsn     string
	channel string
	backoff realtime.Backoff
	rng     *rand.Rand
	logger  *slog.Logger
}

func NewListener(dsn string, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		dsn:     dsn,
		channel: sqlstore.NotifyChannel,
		backoff: realtime.DefaultBackoff(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

// Watch runs until ctx is canceled.
func (l *Listener) Watch(ctx context.Context, fn func(model.Change)) error {
	l.logger.Info("listener started", "channel", l.channel)

	attempt := 0
	for {
		err := l.listenOnce(ctx, fn, func() { attempt = 0 })
		if ctx.Err() != nil {
			l.logger.Info("listener stopping", "reason", ctx.Err())
			return ctx.Err()
		}
		attempt++
		l.logger.Warn("listener disconnected", "err", err, "attempt", attempt)
		if err := l.backoff.Sleep(ctx, attempt, l.rng); err != nil {
			return err
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context, fn func(model.Change), connected func()) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	connected()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		c, err := decodeNotification(n.Payload)
		if err != nil {
			l.logger.Error("bad notification payload", "payload", n.Payload, "err", err)
			continue
		}
		fn(c)
	}
}

type notification struct {
	Op string    `json:"op"`
	ID model.ID  `json:"id"`
	At time.Time `json:"at"`
}

func decodeNotification(payload string) (model.Change, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return model.Change{}, err
	}
	op := model.ChangeOp(n.Op)
	switch op {
	case model.ChangeInsert, model.ChangeUpdate, model.ChangeDelete:
	default:
		return model.Change{}, errors.New("unknown op " + n.Op)
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	return model.Change{Op: op, ID: n.ID, At: n.At.UTC()}, nil
}
