package config

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/key"
	"github.com/tubecli/tube/player"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("player.command_timeout_ms")
			So(result, ShouldEqual, "player_command_timeout_ms")
		})

		Convey("Env should carry the application prefix once", func() {
			f := Default[key.PlayerBinary]
			So(f.Env(), ShouldEqual, "TUBE_PLAYER_BINARY")
		})
	})
}

func TestPlayerOptions(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("PlayerOptions maps the timeouts", func() {
			viper.Set(key.PlayerCommandTimeoutMs, 1500)
			defer viper.Set(key.PlayerCommandTimeoutMs, Default[key.PlayerCommandTimeoutMs].Value)

			opts := PlayerOptions()
			So(opts.Binary, ShouldEqual, "mpv")
			So(opts.CommandTimeout, ShouldEqual, 1500*time.Millisecond)
			So(opts.EndpointPath, ShouldBeEmpty)
		})

		Convey("PlaybackMode honors the override", func() {
			So(PlaybackMode(true), ShouldEqual, player.AudioOnly)
			So(PlaybackMode(false), ShouldEqual, player.AudioVideo)
		})
	})
}

func TestFieldParse(t *testing.T) {
	Convey("Given registered fields", t, func() {
		Convey("Integers are parsed", func() {
			f, err := Lookup(key.PlayerSeekStep)
			So(err, ShouldBeNil)
			v, err := f.Parse([]string{"10"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 10)

			_, err = f.Parse([]string{"ten"})
			So(err, ShouldNotBeNil)
		})

		Convey("Booleans are parsed", func() {
			f, _ := Lookup(key.YoutubeMusic)
			v, err := f.Parse([]string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)
		})

		Convey("Lists keep every value", func() {
			f, _ := Lookup(key.PlayerExtraArgs)
			v, err := f.Parse([]string{"--volume=50", "--mute=yes"})
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"--volume=50", "--mute=yes"})
		})

		Convey("Missing values are rejected", func() {
			f, _ := Lookup(key.PlayerBinary)
			_, err := f.Parse(nil)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Unknown keys are reported", t, func() {
		_, err := Lookup("player.binaryy")
		So(errors.Is(err, ErrUnknownKey), ShouldBeTrue)
	})
}
