package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeReply decides how the fake player answers a command.
// Returning ok=false leaves the command unanswered.
type fakeReply func(cmd Command) (status string, data any, ok bool)

type fakePlayer struct {
	conn  net.Conn
	reply fakeReply

	mu       sync.Mutex
	received []Command
	observes atomic.Int32
}

func succeed(cmd Command) (string, any, bool) {
	switch cmd.Name {
	case cmdSetProperty:
		return statusSuccess, cmd.Args[1], true
	default:
		return statusSuccess, nil, true
	}
}

func newSession(reply fakeReply) (*IPC, *fakePlayer) {
	client, server := net.Pipe()

	fp := &fakePlayer{conn: server, reply: reply}
	go fp.serve()

	opts := DefaultSpawnOptions()
	opts.EndpointPath = "fake"
	opts.CommandTimeout = 2 * time.Second

	return Attach(client, opts), fp
}

func (f *fakePlayer) serve() {
	r := bufio.NewReader(f.conn)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}

		cmd, id, err := DecodeCommand(line)
		if err != nil {
			continue
		}

		f.mu.Lock()
		f.received = append(f.received, cmd)
		f.mu.Unlock()

		if cmd.Name == cmdObserveProperty {
			f.observes.Add(1)
		}

		go func() {
			status, data, ok := f.reply(cmd)
			if !ok {
				return
			}
			f.send(map[string]any{"request_id": id, "error": status, "data": data})

			if cmd.Name == cmdQuit {
				_ = f.conn.Close()
			}
		}()
	}
}

func (f *fakePlayer) send(v any) {
	b, _ := json.Marshal(v)
	f.raw(string(b))
}

func (f *fakePlayer) raw(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = f.conn.Write([]byte(line + "\n"))
}

func (f *fakePlayer) event(id int64, name string, data any) {
	f.send(map[string]any{"event": EventPropertyChange, "id": id, "name": name, "data": data})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestSendCommand(t *testing.T) {
	Convey("Given an open session", t, func() {
		ipc, fp := newSession(func(cmd Command) (string, any, bool) {
			switch cmd.Name {
			case cmdSeek:
				return "error running command", nil, true
			case cmdAdd:
				return "", nil, false
			case cmdSetProperty:
				// answer out of order
				if n, ok := cmd.Args[1].(float64); ok {
					time.Sleep(time.Duration(int(n)%7) * time.Millisecond)
				}
			}
			return succeed(cmd)
		})
		defer ipc.Quit()

		So(ipc.State(), ShouldEqual, StateOpen)
		So(ipc.Running(), ShouldBeTrue)

		Convey("When many commands are sent concurrently", func() {
			const n = 50
			results := make([]any, n)
			errs := make([]error, n)

			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = ipc.SendCommand(context.Background(), SetProperty(fmt.Sprintf("user-data/%d", i), float64(i)))
				}(i)
			}
			wg.Wait()

			Convey("Then each caller receives its own reply", func() {
				for i := 0; i < n; i++ {
					So(errs[i], ShouldBeNil)
					So(results[i], ShouldEqual, float64(i))
				}
				So(ipc.dispatch.outstanding(), ShouldEqual, 0)
			})
		})

		Convey("When the player rejects a command", func() {
			_, err := ipc.SendCommand(context.Background(), Seek(5, SeekRelative))

			Convey("Then the caller gets an IpcError and the session stays open", func() {
				var ipcErr *IpcError
				So(errors.As(err, &ipcErr), ShouldBeTrue)
				So(ipcErr.Command, ShouldEqual, cmdSeek)
				So(ipcErr.Status, ShouldEqual, "error running command")
				So(ipc.Running(), ShouldBeTrue)
			})
		})

		Convey("When a reply never arrives", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err := ipc.SendCommand(ctx, Add("volume", 5))

			Convey("Then only that call times out", func() {
				So(errors.Is(err, ErrTimeout), ShouldBeTrue)
				So(ipc.dispatch.outstanding(), ShouldEqual, 0)

				err := ipc.SetProperty(context.Background(), "pause", true)
				So(err, ShouldBeNil)
			})
		})

		Convey("When an invalid command is sent", func() {
			_, err := ipc.SendCommand(context.Background(), Load("-flag", LoadReplace))

			Convey("Then nothing reaches the player", func() {
				So(errors.Is(err, ErrInvalidCommand), ShouldBeTrue)
				fp.mu.Lock()
				So(fp.received, ShouldBeEmpty)
				fp.mu.Unlock()
			})
		})

		Convey("When the player writes a malformed line", func() {
			fp.raw(`{"unexpected": true}`)
			fp.raw(`garbage`)

			Convey("Then it is dropped and the session keeps working", func() {
				_, err := ipc.SendCommand(context.Background(), Load("https://www.youtube.com/watch?v=abc", LoadReplace))
				So(err, ShouldBeNil)
				So(ipc.State(), ShouldEqual, StateOpen)
			})
		})

		Convey("When the player emits a non-property event", func() {
			fp.send(map[string]any{"event": "end-file"})

			Convey("Then it is delivered on Events", func() {
				select {
				case ev := <-ipc.Events():
					So(ev.Name, ShouldEqual, "end-file")
				case <-time.After(2 * time.Second):
					So("no event", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestObserveProperty(t *testing.T) {
	Convey("Given an open session", t, func() {
		ipc, fp := newSession(succeed)
		defer ipc.Quit()
		ctx := context.Background()

		Convey("When media is loaded and playback-time is observed", func() {
			_, err := ipc.SendCommand(ctx, Load("https://www.youtube.com/watch?v=abc", LoadReplace))
			So(err, ShouldBeNil)

			pos, err := ipc.ObserveProperty(ctx, "playback-time", KindNumber, 0.0)
			So(err, ShouldBeNil)
			So(pos.HasChanged(), ShouldBeFalse)
			So(pos.Current(), ShouldEqual, 0.0)

			fp.event(pos.prop.id, "playback-time", 12.5)
			So(eventually(func() bool { return pos.Version() == 1 }), ShouldBeTrue)

			Convey("Then the handle reports the new value once", func() {
				So(pos.HasChanged(), ShouldBeTrue)
				So(pos.Current(), ShouldEqual, 12.5)
				So(pos.Float(), ShouldEqual, 12.5)
				So(pos.HasChanged(), ShouldBeFalse)
			})

			Convey("And an unavailable value falls back to the default", func() {
				fp.event(pos.prop.id, "playback-time", nil)
				So(eventually(func() bool { return pos.Version() == 2 }), ShouldBeTrue)
				So(pos.HasChanged(), ShouldBeTrue)
				So(pos.Current(), ShouldEqual, 0.0)
			})
		})

		Convey("When volume is observed before any event", func() {
			vol, err := ipc.ObserveProperty(ctx, "volume", KindNumber, 1.0)

			Convey("Then the default is reported and nothing has changed", func() {
				So(err, ShouldBeNil)
				So(vol.Current(), ShouldEqual, 1.0)
				So(vol.HasChanged(), ShouldBeFalse)
			})
		})

		Convey("When two handles observe pause", func() {
			a, err := ipc.ObserveProperty(ctx, "pause", KindBool, false)
			So(err, ShouldBeNil)
			b, err := ipc.ObserveProperty(ctx, "pause", KindBool, false)
			So(err, ShouldBeNil)

			Convey("Then they share one subscription", func() {
				So(fp.observes.Load(), ShouldEqual, 1)
				So(a.prop, ShouldEqual, b.prop)
			})

			Convey("Then each sees a single event independently", func() {
				fp.event(a.prop.id, "pause", true)
				So(eventually(func() bool { return a.Version() == 1 }), ShouldBeTrue)

				So(a.HasChanged(), ShouldBeTrue)
				So(b.HasChanged(), ShouldBeTrue)
				So(a.HasChanged(), ShouldBeFalse)
				So(b.HasChanged(), ShouldBeFalse)
				So(a.Bool(), ShouldBeTrue)
				So(b.Bool(), ShouldBeTrue)
			})
		})

		Convey("When events arrive by name only", func() {
			title, err := ipc.ObserveProperty(ctx, "media-title", KindString, "")
			So(err, ShouldBeNil)

			fp.send(map[string]any{"event": EventPropertyChange, "name": "media-title", "data": "song"})

			Convey("Then they are routed by property name", func() {
				So(eventually(func() bool { return title.String() == "song" }), ShouldBeTrue)
			})
		})

		Convey("When a name is observed with another kind", func() {
			_, err := ipc.ObserveProperty(ctx, "duration", KindNumber, nil)
			So(err, ShouldBeNil)
			_, err = ipc.ObserveProperty(ctx, "duration", KindString, nil)

			Convey("Then it is refused", func() {
				So(errors.Is(err, ErrKindMismatch), ShouldBeTrue)
			})
		})

		Convey("When the default does not match the kind", func() {
			_, err := ipc.ObserveProperty(ctx, "pause", KindBool, "no")

			Convey("Then it is refused", func() {
				So(errors.Is(err, ErrInvalidCommand), ShouldBeTrue)
			})
		})
	})

	Convey("Given a player that rejects observation", t, func() {
		ipc, _ := newSession(func(cmd Command) (string, any, bool) {
			if cmd.Name == cmdObserveProperty {
				return "property not found", nil, true
			}
			return succeed(cmd)
		})
		defer ipc.Quit()

		_, err := ipc.ObserveProperty(context.Background(), "nonexistent", KindNumber, nil)

		Convey("Then the caller gets the rejection and the name can be retried", func() {
			var ipcErr *IpcError
			So(errors.As(err, &ipcErr), ShouldBeTrue)
			So(ipc.observers.byName, ShouldNotContainKey, "nonexistent")
		})
	})
}

func TestDisconnect(t *testing.T) {
	Convey("Given commands waiting on a silent player", t, func() {
		ipc, fp := newSession(func(cmd Command) (string, any, bool) {
			if cmd.Name == cmdLoadFile {
				return "", nil, false
			}
			return succeed(cmd)
		})

		pos, err := ipc.ObserveProperty(context.Background(), "playback-time", KindNumber, 0.0)
		So(err, ShouldBeNil)

		const n = 8
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			go func() {
				_, err := ipc.SendCommand(context.Background(), Load("https://www.youtube.com/watch?v=abc", LoadAppend))
				errs <- err
			}()
		}
		So(eventually(func() bool { return ipc.dispatch.outstanding() == n }), ShouldBeTrue)

		Convey("When the connection drops", func() {
			_ = fp.conn.Close()

			Convey("Then every waiter is resolved with ErrDisconnected", func() {
				for i := 0; i < n; i++ {
					select {
					case err := <-errs:
						So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
					case <-time.After(2 * time.Second):
						So("waiter still blocked", ShouldBeEmpty)
					}
				}
			})

			Convey("And the session ends failed", func() {
				So(eventually(func() bool { return ipc.State() == StateFailed }), ShouldBeTrue)
				So(ipc.Running(), ShouldBeFalse)
				So(ipc.Err(), ShouldNotBeNil)

				_, err := ipc.SendCommand(context.Background(), Quit())
				So(errors.Is(err, ErrDisconnected), ShouldBeTrue)

				_, err = ipc.ObserveProperty(context.Background(), "volume", KindNumber, nil)
				So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
			})

			Convey("And existing handles keep their last value", func() {
				So(pos.Current(), ShouldEqual, 0.0)
				So(pos.HasChanged(), ShouldBeFalse)
			})
		})
	})
}

func TestOversizedLine(t *testing.T) {
	Convey("Given a command waiting on a player", t, func() {
		ipc, fp := newSession(func(cmd Command) (string, any, bool) {
			if cmd.Name == cmdLoadFile {
				return "", nil, false
			}
			return succeed(cmd)
		})

		errs := make(chan error, 1)
		go func() {
			_, err := ipc.SendCommand(context.Background(), Load("https://www.youtube.com/watch?v=abc", LoadReplace))
			errs <- err
		}()
		So(eventually(func() bool { return ipc.dispatch.outstanding() == 1 }), ShouldBeTrue)

		Convey("When the player sends a line over the cap", func() {
			go fp.raw(strings.Repeat("x", maxLineSize+1))

			Convey("Then the waiter is released and the session fails", func() {
				select {
				case err := <-errs:
					So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
				case <-time.After(2 * time.Second):
					So("waiter still blocked", ShouldBeEmpty)
				}

				So(eventually(func() bool { return ipc.State() == StateFailed }), ShouldBeTrue)
				var perr *ProtocolError
				So(errors.As(ipc.Err(), &perr), ShouldBeTrue)
			})
		})
	})
}

func TestQuit(t *testing.T) {
	Convey("Given an open session", t, func() {
		ipc, fp := newSession(succeed)

		Convey("When Quit returns", func() {
			ipc.Quit()

			Convey("Then the player was asked to quit", func() {
				fp.mu.Lock()
				defer fp.mu.Unlock()
				So(fp.received, ShouldNotBeEmpty)
				So(fp.received[len(fp.received)-1].Name, ShouldEqual, cmdQuit)
			})

			Convey("Then the session is closed for good", func() {
				So(ipc.State(), ShouldEqual, StateClosed)
				So(ipc.Running(), ShouldBeFalse)
				So(ipc.Err(), ShouldBeNil)

				_, err := ipc.SendCommand(context.Background(), Load("https://www.youtube.com/watch?v=abc", LoadReplace))
				So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
				So(errors.Is(ipc.SetProperty(context.Background(), "pause", true), ErrDisconnected), ShouldBeTrue)

				time.Sleep(20 * time.Millisecond)
				So(ipc.Running(), ShouldBeFalse)
			})

			Convey("Then quitting again is harmless", func() {
				ipc.Quit()
				So(ipc.Close(), ShouldBeNil)
				So(ipc.State(), ShouldEqual, StateClosed)
			})

			Convey("Then the done and events channels are closed", func() {
				_, open := <-ipc.Events()
				So(open, ShouldBeFalse)

				select {
				case <-ipc.Done():
				default:
					So("done still open", ShouldBeEmpty)
				}
			})
		})
	})

	Convey("Given a player that ignores quit", t, func() {
		ipc, _ := newSession(func(cmd Command) (string, any, bool) {
			if cmd.Name == cmdQuit {
				return "", nil, false
			}
			return succeed(cmd)
		})

		Convey("Then Quit still returns within a bounded time", func() {
			start := time.Now()
			ipc.Quit()
			So(time.Since(start), ShouldBeLessThan, quitWait+time.Second)
			So(ipc.State(), ShouldEqual, StateClosed)
		})
	})
}

func TestSpawnMissingBinary(t *testing.T) {
	Convey("Given a binary that does not exist", t, func() {
		opts := DefaultSpawnOptions()
		opts.Binary = "tube-no-such-player"

		Convey("When a session is spawned", func() {
			ipc, err := Spawn(context.Background(), opts, AudioOnly)

			Convey("Then a SpawnError is returned", func() {
				So(ipc, ShouldBeNil)
				var spawnErr *SpawnError
				So(errors.As(err, &spawnErr), ShouldBeTrue)
				So(spawnErr.Binary, ShouldEqual, "tube-no-such-player")
			})
		})

		Convey("When With is used", func() {
			called := false
			err := With(context.Background(), opts, AudioVideo, func(*IPC) error {
				called = true
				return nil
			})

			Convey("Then fn never runs", func() {
				So(called, ShouldBeFalse)
				var spawnErr *SpawnError
				So(errors.As(err, &spawnErr), ShouldBeTrue)
			})
		})
	})
}
