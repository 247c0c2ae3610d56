package service

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/Kenneson972/allinclusive/internal/queue"
)

// ReservationPublisher publishes ReservationCreatedEvent messages to a
// durable RabbitMQ queue through the default exchange.  The connection is
// opened lazily and reopened after a failure, so the service starts even
// when the broker is down.  Errors are logged and returned to allow
// callers to ignore failures without interrupting the main request flow.
// Every publish, including a reconnect, is bounded by the caller's
// context: a broker that accepts TCP but never answers costs a booking at
// most its publish budget.
type ReservationPublisher struct {
    url   string
    queue string
    log   *slog.Logger

    // sem is a one-slot lock that can be abandoned when ctx expires.
    sem  chan struct{}
    conn *amqp.Connection
    ch   *amqp.Channel
}

// defaultDialTimeout bounds a reconnect when the caller set no deadline.
const defaultDialTimeout = 5 * time.Second

// NewReservationPublisher returns a publisher for the given broker URL and
// queue name.
func NewReservationPublisher(url, queueName string, logger *slog.Logger) *ReservationPublisher {
    if logger == nil {
        logger = slog.Default()
    }
    return &ReservationPublisher{url: url, queue: queueName, log: logger, sem: make(chan struct{}, 1)}
}

// PublishReservationCreated publishes ev as a persistent JSON message.
func (p *ReservationPublisher) PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error {
    const op = "service.ReservationPublisher.PublishReservationCreated"

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("%s: marshal: %w", op, err)
    }

    if err := p.lock(ctx); err != nil {
        return fmt.Errorf("%s: %w", op, err)
    }
    defer p.unlock()

    ch, err := p.channel(ctx)
    if err != nil {
        p.log.Warn("rabbitmq: channel unavailable", slog.Any("err", err))
        return fmt.Errorf("%s: %w", op, err)
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        MessageId:    ev.ReservationID,
        Type:         "reservation.created",
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        p.resetLocked()
        p.log.Warn("rabbitmq: publish failed", slog.Any("err", err))
        return fmt.Errorf("%s: %w", op, err)
    }
    return nil
}

func (p *ReservationPublisher) lock(ctx context.Context) error {
    select {
    case p.sem <- struct{}{}:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

func (p *ReservationPublisher) unlock() { <-p.sem }

// channel returns the open channel, dialing and declaring the queue on
// first use.  The TCP connect and the AMQP handshake share the time left
// on ctx.  Callers hold the lock.
func (p *ReservationPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.resetLocked()

    timeout := defaultDialTimeout
    if deadline, ok := ctx.Deadline(); ok {
        timeout = time.Until(deadline)
    }
    if timeout <= 0 {
        return nil, fmt.Errorf("dial: %w", context.DeadlineExceeded)
    }
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
    if err != nil {
        return nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, fmt.Errorf("queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *ReservationPublisher) resetLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}

// Close releases the broker connection.
func (p *ReservationPublisher) Close() error {
    p.sem <- struct{}{}
    defer p.unlock()
    p.resetLocked()
    return nil
}
