package tui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tubecli/tube/player"
)

type fakeSurface struct {
	events chan SurfaceEvent
	shown  []float64
}

func newFakeSurface(events ...SurfaceEvent) *fakeSurface {
	s := &fakeSurface{events: make(chan SurfaceEvent, 16)}
	for _, ev := range events {
		s.events <- ev
	}
	return s
}

func (s *fakeSurface) Events() <-chan SurfaceEvent { return s.events }

func (s *fakeSurface) ShowVolume(volume float64) { s.shown = append(s.shown, volume) }

func TestPlan(t *testing.T) {
	Convey("Given several absolute volumes in one tick", t, func() {
		events := []SurfaceEvent{
			{Kind: SurfaceVolume, Volume: 20},
			{Kind: SurfaceVolume, Volume: 150},
			{Kind: SurfaceVolume, Volume: 35},
		}

		commands, _ := plan(events, nil, false)

		Convey("Then only the last one is sent", func() {
			So(commands, ShouldResemble, []player.Command{player.SetProperty("volume", 35.0)})
		})
	})

	Convey("Given an out of range volume", t, func() {
		commands, _ := plan([]SurfaceEvent{{Kind: SurfaceVolume, Volume: 140}}, nil, false)

		Convey("Then it is clamped", func() {
			So(commands, ShouldResemble, []player.Command{player.SetProperty("volume", 100.0)})
		})
	})

	Convey("Given repeated pause toggles", t, func() {
		events := []SurfaceEvent{{Kind: SurfacePause}, {Kind: SurfacePause}, {Kind: SurfacePause}}

		commands, paused := plan(events, nil, false)

		Convey("Then every toggle is applied in order", func() {
			So(commands, ShouldResemble, []player.Command{
				player.SetProperty("pause", true),
				player.SetProperty("pause", false),
				player.SetProperty("pause", true),
			})
			So(paused, ShouldBeTrue)
		})
	})

	Convey("Given surface events and key intents together", t, func() {
		events := []SurfaceEvent{{Kind: SurfacePause}, {Kind: SurfaceVolume, Volume: 60}}
		intents := []intent{
			{kind: intentSeek, delta: 5},
			{kind: intentPause},
			{kind: intentVolume, delta: -5},
			{kind: intentLoad, target: "https://www.youtube.com/watch?v=abc"},
		}

		commands, paused := plan(events, intents, true)

		Convey("Then the surface goes first and keys follow in arrival order", func() {
			So(commands, ShouldResemble, []player.Command{
				player.SetProperty("pause", false),
				player.SetProperty("volume", 60.0),
				player.Seek(5, player.SeekRelative),
				player.SetProperty("pause", true),
				player.Add("volume", -5),
				player.Load("https://www.youtube.com/watch?v=abc", player.LoadReplace),
			})
			So(paused, ShouldBeTrue)
		})
	})

	Convey("Given nothing to do", t, func() {
		commands, paused := plan(nil, nil, true)

		Convey("Then no commands are planned", func() {
			So(commands, ShouldBeEmpty)
			So(paused, ShouldBeTrue)
		})
	})
}

func TestDrainSurface(t *testing.T) {
	Convey("Given a surface with waiting events", t, func() {
		s := newFakeSurface(SurfaceEvent{Kind: SurfacePause}, SurfaceEvent{Kind: SurfaceVolume, Volume: 10})

		Convey("Then draining takes them all without blocking", func() {
			So(drainSurface(s), ShouldHaveLength, 2)
			So(drainSurface(s), ShouldBeEmpty)
		})

		Convey("Then a closed surface stops the drain", func() {
			close(s.events)
			So(drainSurface(s), ShouldHaveLength, 2)
			So(drainSurface(s), ShouldBeEmpty)
		})
	})

	Convey("Given no surface", t, func() {
		So(drainSurface(nil), ShouldBeNil)
	})
}
