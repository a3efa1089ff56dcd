package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuery(t *testing.T) {
	Convey("Given remembered queries", t, func() {
		viper.Set(key.SearchShowQuerySuggestions, true)

		So(Remember("lofi beats", 1), ShouldBeNil)
		So(Remember("lofi hip hop", 10), ShouldBeNil)

		Convey("Then suggestions are sorted by rank", func() {
			s := SuggestMany("lofi")
			So(len(s), ShouldBeGreaterThanOrEqualTo, 2)
			So(s[0], ShouldEqual, "lofi hip hop")
		})

		Convey("Then remembering again invalidates cached suggestions", func() {
			_ = SuggestMany("lofi")
			So(Remember("lofi beats", 100), ShouldBeNil)
			So(Suggest("lofi").MustGet(), ShouldEqual, "lofi beats")
		})

		Convey("Then fuzzy input matches", func() {
			So(SuggestMany("lfhh"), ShouldContain, "lofi hip hop")
		})

		Convey("Then blank queries are not stored", func() {
			So(Remember("   ", 1), ShouldBeNil)
			So(SuggestMany(""), ShouldNotContain, "")
		})

		Convey("Then nothing is suggested when suggestions are disabled", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			So(SuggestMany("lofi"), ShouldBeEmpty)
			So(Suggest("lofi").IsAbsent(), ShouldBeTrue)
		})

		Convey("It sanitizes input", func() {
			So(sanitize("  LoFi  "), ShouldEqual, "lofi")
		})
	})
}
