package util

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "result", "results"), ShouldEqual, "1 result")
		So(Quantify(0, "result", "results"), ShouldEqual, "0 results")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("audio"), ShouldEqual, "Audio")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFormatDuration(t *testing.T) {
	Convey("FormatDuration", t, func() {
		So(FormatDuration(0), ShouldEqual, "0:00")
		So(FormatDuration(12.5), ShouldEqual, "0:12")
		So(FormatDuration(605), ShouldEqual, "10:05")
		So(FormatDuration(3725), ShouldEqual, "1:02:05")
		So(FormatDuration(-3), ShouldEqual, "0:00")
		So(FormatDuration(math.NaN()), ShouldEqual, "0:00")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(130.0, 0, 100), ShouldEqual, 100.0)
		So(Clamp(-5, 0, 100), ShouldEqual, 0)
		So(Clamp(42, 0, 100), ShouldEqual, 42)
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[string]
		s.Push("player")
		s.Push("search")
		So(s.Len(), ShouldEqual, 2)
		So(s.Peek(), ShouldEqual, "search")
		So(s.Pop(), ShouldEqual, "search")
		So(s.Pop(), ShouldEqual, "player")
		So(s.Pop(), ShouldEqual, "")
	})
}
