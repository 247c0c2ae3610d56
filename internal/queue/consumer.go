package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer listens to the reservation queue and appends one line per
// event to a log file.
type Consumer struct {
    URL     string
    Queue   string
    LogPath string
    Log     *slog.Logger
}

// Run connects to RabbitMQ, declares the queue (durable), and consumes
// messages until ctx is cancelled.  Broker outages are retried with
// exponential backoff capped at 30s; a message that cannot be processed
// is rejected without requeue so the loop keeps going.  Run returns nil
// once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
    logger := c.Log
    if logger == nil {
        logger = slog.Default()
    }
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            logger.Warn("reservation-consumer: failed to dial broker", slog.Any("err", err), slog.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return nil
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn, logger)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        logger.Warn("reservation-consumer: consume loop ended; reconnecting", slog.Any("err", err))
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, logger *slog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warn("reservation-consumer: set QoS failed", slog.Any("err", err))
    }
    if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := AppendEvent(c.LogPath, d.Body); err != nil {
                logger.Error("reservation-consumer: handle message failed", slog.Any("err", err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// AppendEvent decodes a ReservationCreatedEvent and appends it to the
// file at path as a single human-readable line, creating parent
// directories as needed.
func AppendEvent(path string, body []byte) error {
    var ev ReservationCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.ReservationID == "" {
        return errors.New("event without reservation_id")
    }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders the log line for ev, newline included.
func FormatEvent(ev ReservationCreatedEvent) string {
    return fmt.Sprintf("[%s] Reservation created | reservation_id=%s | villa_id=%s | villa=%q | customer=%q | email=%s | stay=%s..%s | guests=%d | event=%t | total=%s | status=%s\n",
        ev.CreatedAt, ev.ReservationID, ev.VillaID, ev.VillaName, ev.CustomerName, ev.CustomerEmail,
        ev.CheckIn, ev.CheckOut, ev.GuestsCount, ev.IsEvent, ev.TotalPrice, ev.Status)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
