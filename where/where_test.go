package where

import (
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Temp()", func() {
			So(lo.Must(filesystem.API().IsDir(Temp())), ShouldBeTrue)
		})

		Convey("Downloads() honors downloads.path", func() {
			viper.Set(key.DownloadsPath, "/music/tube")
			defer viper.Set(key.DownloadsPath, "")

			So(Downloads(), ShouldEqual, "/music/tube")
			So(lo.Must(filesystem.API().IsDir("/music/tube")), ShouldBeTrue)
		})
	})
}
