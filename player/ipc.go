package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tubecli/tube/log"
)

// State is the lifecycle stage of a session. Transitions only move forward.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) terminal() bool {
	return s == StateClosed || s == StateFailed
}

const (
	eventBuffer = 64
	quitWait    = time.Second
)

// IPC is a session with one player process.
type IPC struct {
	opts SpawnOptions
	proc *Process
	log  log.Entry

	transport *Transport
	reader    *LineReader
	writer    *LineWriter

	dispatch  *dispatch
	observers *observers
	events    chan *Event

	state  atomic.Int32
	nextID atomic.Int64

	done       chan struct{}
	readerDone chan struct{}
	closeOnce  sync.Once
	cause      error
}

func newIPC(opts SpawnOptions) *IPC {
	return &IPC{
		opts:       opts,
		log:        log.With(log.Fields{"endpoint": opts.EndpointPath}),
		dispatch:   newDispatch(),
		observers:  newObservers(),
		events:     make(chan *Event, eventBuffer),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
}

// Spawn starts the player and connects to its IPC endpoint. If the endpoint
// never becomes connectable the process is terminated before returning.
func Spawn(ctx context.Context, opts SpawnOptions, mode PlaybackMode) (*IPC, error) {
	opts, err := opts.withEndpoint()
	if err != nil {
		return nil, &SpawnError{Binary: opts.Binary, Err: err}
	}

	ipc := newIPC(opts)
	ipc.setState(StateConnecting)

	proc, err := StartProcess(opts, mode)
	if err != nil {
		ipc.setState(StateFailed)
		return nil, err
	}

	connCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-proc.Exited():
			cancel()
		case <-connCtx.Done():
		}
	}()

	transport, err := Connect(connCtx, opts.EndpointPath, opts.ConnectTimeout)
	cancel()
	if err != nil {
		if !proc.IsRunning() {
			err = &ConnectError{
				Endpoint: opts.EndpointPath,
				Timeout:  opts.ConnectTimeout,
				Err:      fmt.Errorf("player exited before accepting connections: %v", proc.ExitErr()),
			}
		}
		proc.Terminate(opts.TerminateTimeout)
		ipc.setState(StateFailed)
		return nil, err
	}

	ipc.proc = proc
	ipc.start(transport)

	go func() {
		select {
		case <-proc.Exited():
			ipc.shutdown(fmt.Errorf("player exited: %v", proc.ExitErr()), false)
		case <-ipc.done:
		}
	}()

	return ipc, nil
}

// Attach opens a session over an established connection to a running player.
// The session does not own a process; closing it only closes the connection.
func Attach(conn net.Conn, opts SpawnOptions) *IPC {
	ipc := newIPC(opts)
	ipc.setState(StateConnecting)
	ipc.start(NewTransport(conn))
	return ipc
}

// With spawns a session, runs fn and releases the session on every exit path,
// including panics inside fn.
func With(ctx context.Context, opts SpawnOptions, mode PlaybackMode, fn func(*IPC) error) error {
	ipc, err := Spawn(ctx, opts, mode)
	if err != nil {
		return err
	}
	defer ipc.Quit()

	return fn(ipc)
}

func (ipc *IPC) start(t *Transport) {
	ipc.transport = t
	ipc.reader, ipc.writer = t.Split()
	ipc.setState(StateOpen)
	go ipc.readLoop()
}

func (ipc *IPC) setState(s State) {
	for {
		old := State(ipc.state.Load())
		if old.terminal() || s <= old {
			return
		}
		if ipc.state.CompareAndSwap(int32(old), int32(s)) {
			ipc.log.Debugf("state %s -> %s", old, s)
			return
		}
	}
}

// State returns the current lifecycle stage.
func (ipc *IPC) State() State {
	return State(ipc.state.Load())
}

// Running reports whether the session is open and its player alive. It never blocks.
func (ipc *IPC) Running() bool {
	if ipc.State() != StateOpen {
		return false
	}
	return ipc.proc == nil || ipc.proc.IsRunning()
}

// Done returns a channel closed once the session starts shutting down.
func (ipc *IPC) Done() <-chan struct{} {
	return ipc.done
}

// Err returns why the session failed, or nil while open or after a clean quit.
func (ipc *IPC) Err() error {
	select {
	case <-ipc.done:
		return ipc.cause
	default:
		return nil
	}
}

// Events delivers player events other than property changes. Events are
// dropped when nobody keeps up with the channel. It is closed after shutdown.
func (ipc *IPC) Events() <-chan *Event {
	return ipc.events
}

// SendCommand writes cmd and waits for its reply. The wait is bounded by ctx
// and the configured command timeout; a timeout abandons only this call.
func (ipc *IPC) SendCommand(ctx context.Context, cmd Command) (any, error) {
	if ipc.State() != StateOpen {
		return nil, ErrDisconnected
	}

	return ipc.send(ctx, cmd)
}

// SetProperty assigns a player property.
func (ipc *IPC) SetProperty(ctx context.Context, name string, value any) error {
	_, err := ipc.SendCommand(ctx, SetProperty(name, value))
	return err
}

// ObserveProperty returns a handle tracking name, decoded as kind. The first
// observer of a name registers it with the player; later observers share that
// subscription. def is reported until a decodable value arrives; nil selects
// the zero value of kind.
func (ipc *IPC) ObserveProperty(ctx context.Context, name string, kind ValueKind, def any) (*ObservedValue, error) {
	if ipc.State() != StateOpen {
		return nil, ErrDisconnected
	}

	def, err := checkDefault(kind, def)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	prop, created, err := ipc.observers.acquire(name, kind)
	if err != nil {
		return nil, err
	}

	if created {
		_, err := ipc.send(ctx, ObserveProperty(prop.id, name))
		ipc.observers.settle(prop, err)
	} else {
		select {
		case <-prop.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ipc.done:
			return nil, ErrDisconnected
		}
	}

	if prop.err != nil {
		return nil, prop.err
	}

	return &ObservedValue{prop: prop, def: def}, nil
}

// Quit asks the player to exit, then releases the connection and the process.
// It is safe to call from any state and more than once. Failures are logged.
func (ipc *IPC) Quit() {
	ipc.shutdown(nil, true)
}

// Close is Quit for use as an io.Closer.
func (ipc *IPC) Close() error {
	ipc.Quit()
	return nil
}

func (ipc *IPC) send(ctx context.Context, cmd Command) (any, error) {
	id := ipc.nextID.Add(1)

	line, err := Encode(cmd, id)
	if err != nil {
		return nil, err
	}

	slot, err := ipc.dispatch.register(id)
	if err != nil {
		return nil, err
	}

	if err := ipc.writer.WriteLine(line); err != nil {
		ipc.dispatch.cancel(id)
		go ipc.shutdown(err, false)
		return nil, disconnected(err)
	}

	if ipc.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ipc.opts.CommandTimeout)
		defer cancel()
	}

	select {
	case r := <-slot:
		if r.err != nil {
			return nil, r.err
		}
		if !r.resp.OK() {
			return nil, &IpcError{Command: cmd.Name, Status: r.resp.Status}
		}
		return r.resp.Payload()
	case <-ctx.Done():
		ipc.dispatch.cancel(id)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s (request %d)", ErrTimeout, cmd.Name, id)
		}
		return nil, ctx.Err()
	}
}

func (ipc *IPC) readLoop() {
	defer close(ipc.readerDone)

	for {
		line, err := ipc.reader.ReadLine()
		if err != nil {
			ipc.dispatch.fail(disconnected(err))
			go ipc.shutdown(err, false)
			return
		}

		msg, err := Decode(line)
		if err != nil {
			ipc.log.Warnf("%v", err)
			continue
		}

		switch m := msg.(type) {
		case *Response:
			ipc.dispatch.complete(m)
		case *Event:
			ipc.route(m)
		}
	}
}

func (ipc *IPC) route(ev *Event) {
	if ev.Name == EventPropertyChange {
		ipc.observers.route(ev)
		return
	}

	select {
	case ipc.events <- ev:
	default:
		ipc.log.Debugf("event %s dropped", ev.Name)
	}
}

// shutdown moves the session to a terminal state exactly once. A nil cause
// ends in Closed, anything else in Failed.
func (ipc *IPC) shutdown(cause error, graceful bool) {
	ipc.closeOnce.Do(func() {
		if ipc.State() < StateOpen {
			ipc.setState(StateFailed)
			close(ipc.done)
			return
		}

		ipc.setState(StateClosing)
		if cause != nil {
			ipc.log.Warnf("disconnected: %v", cause)
		}

		if graceful {
			ctx, cancel := context.WithTimeout(context.Background(), quitWait)
			if _, err := ipc.send(ctx, Quit()); err != nil {
				ipc.log.Debugf("quit: %v", err)
			}
			cancel()
		}

		ipc.cause = cause
		close(ipc.done)

		err := disconnected(cause)
		ipc.dispatch.fail(err)
		ipc.observers.fail(err)

		if err := ipc.transport.Close(); err != nil {
			ipc.log.Debugf("close transport: %v", err)
		}
		<-ipc.readerDone
		close(ipc.events)

		if ipc.proc != nil {
			ipc.proc.Terminate(ipc.opts.TerminateTimeout)
		}

		if cause != nil {
			ipc.setState(StateFailed)
		} else {
			ipc.setState(StateClosed)
		}
	})
}
