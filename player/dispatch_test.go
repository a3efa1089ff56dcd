package player

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDispatch(t *testing.T) {
	Convey("Given a dispatch table", t, func() {
		d := newDispatch()

		Convey("When a registered id is completed", func() {
			slot, err := d.register(1)
			So(err, ShouldBeNil)

			ok := d.complete(&Response{RequestID: 1, Status: statusSuccess})

			Convey("Then the slot receives the response once", func() {
				So(ok, ShouldBeTrue)
				r := <-slot
				So(r.err, ShouldBeNil)
				So(r.resp.RequestID, ShouldEqual, 1)
				So(d.outstanding(), ShouldEqual, 0)
			})

			Convey("And a duplicate response is dropped", func() {
				So(d.complete(&Response{RequestID: 1, Status: statusSuccess}), ShouldBeFalse)
			})
		})

		Convey("When an unknown id is completed", func() {
			Convey("Then it is dropped", func() {
				So(d.complete(&Response{RequestID: 42}), ShouldBeFalse)
			})
		})

		Convey("When a slot is cancelled", func() {
			_, err := d.register(2)
			So(err, ShouldBeNil)
			d.cancel(2)

			Convey("Then a late response is discarded", func() {
				So(d.complete(&Response{RequestID: 2}), ShouldBeFalse)
				So(d.outstanding(), ShouldEqual, 0)
			})
		})

		Convey("When the table fails", func() {
			a, _ := d.register(3)
			b, _ := d.register(4)
			d.fail(ErrDisconnected)

			Convey("Then every outstanding slot is resolved", func() {
				So(errors.Is((<-a).err, ErrDisconnected), ShouldBeTrue)
				So(errors.Is((<-b).err, ErrDisconnected), ShouldBeTrue)
			})

			Convey("And new registrations are refused", func() {
				_, err := d.register(5)
				So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
			})

			Convey("And failing again is harmless", func() {
				d.fail(errors.New("second"))
				_, err := d.register(6)
				So(errors.Is(err, ErrDisconnected), ShouldBeTrue)
			})
		})
	})
}
