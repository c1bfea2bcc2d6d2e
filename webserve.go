package webserve

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/webserve/config"
	"github.com/indigo-web/webserve/internal/address"
	"github.com/indigo-web/webserve/internal/server"
	"github.com/indigo-web/webserve/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// connIDLength is the length of connection identifiers appearing in logs.
const connIDLength = 8

type (
	Producer     = server.Producer
	ProducerFunc = server.ProducerFunc
)

// Logger is satisfied by *log.Logger. Any structured logger may be plugged in via a thin
// adapter.
type Logger interface {
	Printf(format string, v ...any)
}

// App is a single-port server. Every accepted connection carries exactly one request, which is
// answered by the producer or, for WebSocket upgrade requests, by the handshake.
type App struct {
	addr    address.Address
	cfg     *config.Config
	logger  Logger
	hooks   hooks
	mu      sync.Mutex
	serving atomic.Bool
	tcp     *transport.TCP
	loop    context.Context
	stop    context.CancelFunc
	abort   context.CancelFunc
	done    chan struct{}
	err     error
	conns   *xsync.MapOf[string, transport.Client]
	total   *xsync.Counter
}

// New returns a new App instance. The address may omit the host, the loopback is used then.
func New(addr string) *App {
	appAddr, err := address.Parse(addr)
	if err != nil {
		panic(fmt.Errorf("webserve: listen: bad addr: %v", err))
	}

	return &App{
		addr:   appAddr,
		cfg:    config.Default(),
		logger: log.Default(),
		conns:  xsync.NewMapOf[string, transport.Client](),
		total:  xsync.NewCounter(),
	}
}

// Tune replaces default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default logger, which is the standard library's one.
func (a *App) Logger(logger Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback at the moment, when the accept loop is started.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when the accept loop has ended. It's
// guaranteed, that at the moment as the callback is called, the server doesn't accept any new
// connections. Connections accepted earlier may still be in process.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Start binds the listening socket and runs the accept loop in the background. Bind errors are
// returned right away. Starting an already serving App does nothing. If the accept loop is
// stopped but hasn't ended yet, Start waits for it to end and starts a new one.
func (a *App) Start(ctx context.Context, producer Producer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for a.done != nil && !isClosed(a.done) {
		if a.serving.Load() && a.loop.Err() == nil {
			return nil
		}

		done := a.done
		a.mu.Unlock()
		<-done
		a.mu.Lock()
	}

	tcp := transport.NewTCP(a.cfg.NET, a.logger)
	if err := tcp.Bind(a.addr.String()); err != nil {
		return fmt.Errorf("webserve: bind %s: %w", a.addr, err)
	}

	loopCtx, stop := context.WithCancel(ctx)
	connCtx, abort := context.WithCancel(context.WithoutCancel(ctx))
	srv := server.New(a.cfg, producer, a.logger)

	a.tcp, a.loop, a.stop, a.abort, a.err = tcp, loopCtx, stop, abort, nil
	a.done = make(chan struct{})
	a.serving.Store(true)

	go a.run(loopCtx, connCtx, srv, tcp, a.done)

	return nil
}

// Serve starts the App and blocks until it is stopped.
func (a *App) Serve(producer Producer) error {
	if err := a.Start(context.Background(), producer); err != nil {
		return err
	}

	return a.Wait()
}

func (a *App) run(ctx, connCtx context.Context, srv *server.Server, tcp *transport.TCP, done chan struct{}) {
	defer close(done)

	callIfNotNil(a.hooks.OnStart)
	a.logger.Printf("webserve: listening on %s", tcp.Addr())

	err := tcp.Listen(ctx, func(conn net.Conn) {
		a.handle(connCtx, srv, conn)
	})

	a.serving.Store(false)
	tcp.Close()

	a.mu.Lock()
	a.err = err
	a.mu.Unlock()

	if err != nil {
		a.logger.Printf("webserve: accept loop: %s", err)
	}

	callIfNotNil(a.hooks.OnStop)
}

func (a *App) handle(ctx context.Context, srv *server.Server, conn net.Conn) {
	id := uniuri.NewLen(connIDLength)
	client := transport.NewClient(conn, make([]byte, a.cfg.NET.ReadBufferSize))

	a.conns.Store(id, client)
	a.total.Inc()
	defer a.conns.Delete(id)

	srv.Serve(ctx, id, client)
}

// Stop makes the accept loop end at its next iteration. Connections that were already
// accepted are processed till the end. The call isn't blocking, use Wait for that.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stop != nil {
		a.stop()
	}
}

// Close stops the App and aborts every connection in process.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stop == nil {
		return
	}

	a.stop()
	a.abort()
	a.conns.Range(func(_ string, client transport.Client) bool {
		_ = client.Close()
		return true
	})
}

// Wait blocks until the accept loop has ended and every accepted connection is processed. It
// returns the error that broke the accept loop, if any.
func (a *App) Wait() error {
	a.mu.Lock()
	done, tcp := a.done, a.tcp
	a.mu.Unlock()

	if done == nil {
		return nil
	}

	<-done
	tcp.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.err
}

// IsServing reports whether the accept loop is running.
func (a *App) IsServing() bool {
	return a.serving.Load()
}

// Addr returns the address the App is bound to, or nil if it was never started.
func (a *App) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tcp == nil {
		return nil
	}

	return a.tcp.Addr()
}

type Stats struct {
	// Accepted is the number of connections handled since the App was created.
	Accepted int64
	// Active is the number of connections being processed right now.
	Active int
	// Pending is the number of accepted connections waiting for a free worker.
	Pending int
}

func (a *App) Stats() Stats {
	stats := Stats{
		Accepted: a.total.Value(),
		Active:   a.conns.Size(),
	}

	a.mu.Lock()
	if a.tcp != nil {
		stats.Pending = a.tcp.Pending()
	}
	a.mu.Unlock()

	return stats
}

type hooks struct {
	OnStart, OnStop func()
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
