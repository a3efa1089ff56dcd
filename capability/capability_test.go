package capability

import (
	"errors"
	"os/exec"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func fakeLook(found ...string) LookPath {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetect(t *testing.T) {
	Convey("Given every tool installed", t, func() {
		set := DetectWith(fakeLook("mpv", "yt-dlp", "ffmpeg"), "", "")

		Convey("Then everything is permitted", func() {
			So(set.Player.Path.MustGet(), ShouldEqual, "/usr/bin/mpv")
			So(set.RequirePlayback(), ShouldBeNil)
			So(set.RequireSearch(), ShouldBeNil)
			So(set.RequireDownload(true), ShouldBeNil)
			So(len(set.Tools()), ShouldEqual, 3)
		})
	})

	Convey("Given only yt-dlp", t, func() {
		set := DetectWith(fakeLook("yt-dlp"), "", "")

		Convey("Then playback and audio extraction are refused", func() {
			So(set.RequirePlayback(), ShouldNotBeNil)
			So(set.RequireSearch(), ShouldBeNil)
			So(set.RequireDownload(false), ShouldBeNil)
			So(set.RequireDownload(true), ShouldNotBeNil)
		})
	})

	Convey("Given a custom player binary", t, func() {
		set := DetectWith(fakeLook("mpv.com", "yt-dlp"), "mpv.com", "")

		Convey("Then it is probed instead of mpv", func() {
			So(set.Player.Name, ShouldEqual, "mpv.com")
			So(set.Player.Available(), ShouldBeTrue)
		})
	})

	Convey("Given nothing installed", t, func() {
		set := DetectWith(func(string) (string, error) { return "", errors.New("nope") }, "", "")

		Convey("Then the error names the tool and a hint", func() {
			err := set.RequireSearch()
			So(err.Error(), ShouldContainSubstring, "yt-dlp")
			So(err.Error(), ShouldContainSubstring, "https://")
		})
	})
}
