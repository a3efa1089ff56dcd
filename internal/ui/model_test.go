package ui

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := &Model{}

		Convey("When a notification arrives", func() {
			cmd := m.Update(Notify("Copied")())

			Convey("Then it is shown and a clear is scheduled", func() {
				So(cmd, ShouldNotBeNil)
				So(m.Current(), ShouldEqual, "Copied")
				So(m.View("a\nb"), ShouldStartWith, "a\nb")
				So(strings.Contains(m.View("a\nb"), "Copied"), ShouldBeTrue)
			})

			Convey("Then its own clear hides it", func() {
				m.Update(ClearNotificationMsg{seq: m.seq})
				So(m.Current(), ShouldBeEmpty)
				So(m.View("a"), ShouldEqual, "a")
			})

			Convey("Then a stale clear keeps a newer notification", func() {
				stale := ClearNotificationMsg{seq: m.seq}
				m.Update(NotificationMsg{Text: "Opened"})
				m.Update(stale)
				So(m.Current(), ShouldEqual, "Opened")
			})
		})
	})
}
