package service

import (
    "context"
    "io"
    "log/slog"
    "net"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Kenneson972/allinclusive/internal/pricing"
    "github.com/Kenneson972/allinclusive/internal/queue"
)

// silentBroker accepts TCP connections and never speaks AMQP, like a
// broker stuck before the handshake.  It returns an amqp:// URL.
func silentBroker(t *testing.T) string {
    t.Helper()
    ln, err := net.Listen("tcp", "127.0.0.1:0")
    require.NoError(t, err)

    var (
        mu    sync.Mutex
        conns []net.Conn
    )
    go func() {
        for {
            c, err := ln.Accept()
            if err != nil {
                return
            }
            mu.Lock()
            conns = append(conns, c)
            mu.Unlock()
        }
    }()
    t.Cleanup(func() {
        _ = ln.Close()
        mu.Lock()
        defer mu.Unlock()
        for _, c := range conns {
            _ = c.Close()
        }
    })
    return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPublisherDialHonoursContext(t *testing.T) {
    p := NewReservationPublisher(silentBroker(t), "reservation.created", quietLogger())
    t.Cleanup(func() { _ = p.Close() })

    ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
    defer cancel()

    start := time.Now()
    err := p.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{ReservationID: "r-1"})
    require.Error(t, err)
    assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPublisherConcurrentCallsDoNotQueueBehindDial(t *testing.T) {
    p := NewReservationPublisher(silentBroker(t), "reservation.created", quietLogger())
    t.Cleanup(func() { _ = p.Close() })

    const callers = 5
    var wg sync.WaitGroup
    errs := make([]error, callers)
    start := time.Now()
    for i := range callers {
        wg.Add(1)
        go func() {
            defer wg.Done()
            ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
            defer cancel()
            errs[i] = p.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{ReservationID: "r"})
        }()
    }
    wg.Wait()

    // Each caller gives up on its own deadline instead of waiting for
    // the others' dials one after another.
    assert.Less(t, time.Since(start), 2*time.Second)
    for _, err := range errs {
        assert.Error(t, err)
    }
}

func TestCreateReservationWithStalledBroker(t *testing.T) {
    pub := NewReservationPublisher(silentBroker(t), "reservation.created", quietLogger())
    t.Cleanup(func() { _ = pub.Close() })
    store := &memStore{}
    svc := NewReservationService(fixtureCatalog(t), store, pricing.NewEngine(), pub, quietLogger())

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    start := time.Now()
    res, err := svc.CreateReservation(ctx, validRequest())
    elapsed := time.Since(start)

    require.NoError(t, err, "a broker failure never fails a committed booking")
    assert.NotEmpty(t, res.ID)
    assert.Len(t, store.rows, 1)
    assert.Less(t, elapsed, 4*time.Second, "publish is bounded by its 3s budget")
}
