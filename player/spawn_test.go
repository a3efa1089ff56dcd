//go:build !windows

package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakePlayerEnv makes the test binary act as a player when it is spawned.
// The value selects how the player behaves.
const fakePlayerEnv = "TUBE_TEST_FAKE_PLAYER"

const (
	fakeServe       = "serve"
	fakeCrashOnLoad = "crash-on-load"
)

func TestMain(m *testing.M) {
	if mode, ok := os.LookupEnv(fakePlayerEnv); ok {
		os.Exit(runFakePlayer(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

// runFakePlayer listens on the endpoint named by --input-ipc-server, answers
// every command with success and exits on quit. Observed properties get one
// change event right after they are registered.
func runFakePlayer(mode string, args []string) int {
	var endpoint string
	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--input-ipc-server="); ok {
			endpoint = v
		}
	}
	if endpoint == "" {
		return 2
	}

	ln, err := net.Listen("unix", endpoint)
	if err != nil {
		return 2
	}
	// Leave the socket file behind on exit, like a player that is killed.
	ln.(*net.UnixListener).SetUnlinkOnClose(false)

	conn, err := ln.Accept()
	if err != nil {
		return 2
	}

	send := func(v any) {
		b, _ := json.Marshal(v)
		_, _ = conn.Write(append(b, '\n'))
	}

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return 0
		}

		cmd, id, err := DecodeCommand(line)
		if err != nil {
			continue
		}

		if cmd.Name == cmdLoadFile && mode == fakeCrashOnLoad {
			return 1
		}

		send(map[string]any{"request_id": id, "error": statusSuccess})

		switch cmd.Name {
		case cmdObserveProperty:
			send(map[string]any{"event": EventPropertyChange, "id": cmd.Args[0], "name": cmd.Args[1], "data": 12.5})
		case cmdQuit:
			return 0
		}
	}
}

func fakePlayerOptions(t *testing.T, mode string) SpawnOptions {
	self, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(fakePlayerEnv, mode)

	opts := DefaultSpawnOptions()
	opts.Binary = self
	opts.ConnectTimeout = 5 * time.Second
	opts.TerminateTimeout = time.Second
	return opts
}

func endpointGone(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}

func TestSpawnLifecycle(t *testing.T) {
	Convey("Given a spawned player", t, func() {
		opts := fakePlayerOptions(t, fakeServe)

		ipc, err := Spawn(context.Background(), opts, AudioOnly)
		So(err, ShouldBeNil)
		So(ipc.State(), ShouldEqual, StateOpen)
		So(ipc.Running(), ShouldBeTrue)

		endpoint := ipc.opts.EndpointPath
		So(endpointGone(endpoint), ShouldBeFalse)

		Convey("Then observed properties update through the endpoint", func() {
			vol, err := ipc.ObserveProperty(context.Background(), "volume", KindNumber, 100.0)
			So(err, ShouldBeNil)
			So(eventually(vol.HasChanged), ShouldBeTrue)
			So(vol.Float(), ShouldEqual, 12.5)

			ipc.Quit()
		})

		Convey("When the session quits", func() {
			start := time.Now()
			ipc.Quit()

			Convey("Then the player is gone and the endpoint removed", func() {
				So(time.Since(start), ShouldBeLessThan, quitWait+opts.TerminateTimeout)
				So(ipc.State(), ShouldEqual, StateClosed)
				So(ipc.Err(), ShouldBeNil)
				So(ipc.Running(), ShouldBeFalse)
				So(ipc.proc.IsRunning(), ShouldBeFalse)
				So(endpointGone(endpoint), ShouldBeTrue)
			})
		})
	})
}

func TestSpawnPlayerExits(t *testing.T) {
	Convey("Given a player that dies while loading", t, func() {
		opts := fakePlayerOptions(t, fakeCrashOnLoad)

		ipc, err := Spawn(context.Background(), opts, AudioVideo)
		So(err, ShouldBeNil)
		defer ipc.Quit()

		Convey("When a load is in flight", func() {
			_, err := ipc.SendCommand(context.Background(), Load("https://www.youtube.com/watch?v=abc", LoadReplace))

			Convey("Then the command fails as disconnected", func() {
				So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
			})

			Convey("Then the session ends failed and releases the endpoint", func() {
				So(eventually(func() bool { return ipc.State() == StateFailed }), ShouldBeTrue)
				So(ipc.Err(), ShouldNotBeNil)
				So(ipc.Running(), ShouldBeFalse)
				So(ipc.proc.IsRunning(), ShouldBeFalse)
				So(endpointGone(ipc.opts.EndpointPath), ShouldBeTrue)

				_, err := ipc.SendCommand(context.Background(), Quit())
				So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
			})
		})
	})
}

func TestWithPanic(t *testing.T) {
	Convey("Given a callback that panics", t, func() {
		opts := fakePlayerOptions(t, fakeServe)

		var session *IPC
		recovered := func() (r any) {
			defer func() { r = recover() }()
			_ = With(context.Background(), opts, AudioOnly, func(ipc *IPC) error {
				session = ipc
				panic("callback aborted")
			})
			return nil
		}()

		Convey("Then the panic still propagates", func() {
			So(recovered, ShouldEqual, "callback aborted")
		})

		Convey("Then the session was released", func() {
			So(session, ShouldNotBeNil)
			So(session.State(), ShouldEqual, StateClosed)
			So(session.proc.IsRunning(), ShouldBeFalse)
			So(endpointGone(session.opts.EndpointPath), ShouldBeTrue)
		})
	})
}
