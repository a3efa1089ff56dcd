package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/capability"
	"github.com/tubecli/tube/config"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/icon"
	"github.com/tubecli/tube/internal/cache"
	"github.com/tubecli/tube/key"
	"github.com/tubecli/tube/log"
	"github.com/tubecli/tube/player"
	"github.com/tubecli/tube/query"
	"github.com/tubecli/tube/style"
	"github.com/tubecli/tube/tui"
	"github.com/tubecli/tube/util"
	"github.com/tubecli/tube/where"
	"github.com/tubecli/tube/youtube"
)

var errNoResults = errors.New("no results")

const searchCacheTTL = 6 * time.Hour

// SearchCache is where search results are kept between runs.
func SearchCache() *cache.Store {
	return cache.New(filepath.Join(where.Cache(), "search"), searchCacheTTL)
}

func detectTools() capability.Set {
	return capability.Detect(viper.GetString(key.PlayerBinary), constant.DownloaderBinary)
}

func newClient(tools capability.Set) *youtube.Client {
	client := youtube.New(
		tools.Downloader.Path.OrElse(constant.DownloaderBinary),
		viper.GetInt(key.YoutubeSearchLimit),
		viper.GetBool(key.YoutubeMusic),
	)
	client.Cache = SearchCache()
	return client
}

// resolve turns a URL or a search query into a single item. Queries are
// searched and the user picks a result.
func resolve(ctx context.Context, client *youtube.Client, target string) (youtube.Item, error) {
	if youtube.IsURL(target) {
		return youtube.Item{Title: target, URL: target}, nil
	}

	if err := query.Remember(target, 1); err != nil {
		log.Warnf("remember query: %v", err)
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Searching for %s...", icon.Get(icon.Progress), style.Bold(target)))
	items, err := client.Search(ctx, target)
	erase()
	if err != nil {
		return youtube.Item{}, err
	}
	if len(items) == 0 {
		return youtube.Item{}, fmt.Errorf("%w for %q", errNoResults, target)
	}

	return pickItem(items)
}

func pickItem(items []youtube.Item) (youtube.Item, error) {
	options := lo.Map(items, func(item youtube.Item, i int) string {
		label := fmt.Sprintf("%d. %s", i+1, item.Title)
		if item.Uploader != "" {
			label += style.Faint(" - " + item.Uploader)
		}
		if item.Duration > 0 {
			label += style.Faint(" (" + util.FormatDuration(item.Duration.Seconds()) + ")")
		}
		return label
	})

	var index int
	err := survey.AskOne(&survey.Select{
		Message:  fmt.Sprintf("Found %s, select one", util.Quantify(len(items), "result", "results")),
		Options:  options,
		PageSize: 10,
	}, &index)
	if err != nil {
		return youtube.Item{}, err
	}

	return items[index], nil
}

func askQuery(message string) (string, error) {
	var q string
	err := survey.AskOne(&survey.Input{
		Message: message,
		Suggest: func(toComplete string) []string {
			if !viper.GetBool(key.SearchShowQuerySuggestions) {
				return nil
			}
			return query.SuggestMany(toComplete)
		},
	}, &q, survey.WithValidator(survey.Required))
	return q, err
}

func askAudio() (bool, error) {
	const audio, video = "Audio", "Video"

	def := video
	if viper.GetBool(key.PlayerAudioOnly) {
		def = audio
	}

	var mode string
	err := survey.AskOne(&survey.Select{
		Message: "Mode",
		Options: []string{audio, video},
		Default: def,
	}, &mode)
	return mode == audio, err
}

// playItem spawns the player, loads item unless it is empty and shows the
// player screen until the user quits.
func playItem(ctx context.Context, tools capability.Set, item youtube.Item, audio bool) error {
	if err := tools.RequirePlayback(); err != nil {
		return err
	}

	opts := config.PlayerOptions()
	opts.Binary = tools.Player.Path.OrElse(opts.Binary)

	return player.With(ctx, opts, config.PlaybackMode(audio), func(ipc *player.IPC) error {
		if item.URL != "" {
			if _, err := ipc.SendCommand(ctx, player.Load(item.URL, player.LoadReplace)); err != nil {
				return fmt.Errorf("load %s: %w", item.URL, err)
			}
		}

		options := &tui.Options{
			Item:        item,
			Audio:       audio,
			Music:       viper.GetBool(key.YoutubeMusic),
			SeekStep:    float64(viper.GetInt(key.PlayerSeekStep)),
			VolumeStep:  float64(viper.GetInt(key.PlayerVolumeStep)),
			SaveHistory: viper.GetBool(key.HistorySaveOnPlay),
		}
		if tools.RequireSearch() == nil {
			options.Searcher = newClient(tools)
		}

		return tui.Run(ctx, ipc, options)
	})
}

func downloadItem(ctx context.Context, tools capability.Set, item youtube.Item, opts youtube.DownloadOptions) error {
	if err := tools.RequireDownload(opts.Audio); err != nil {
		return err
	}

	if opts.Dir == "" {
		opts.Dir = where.Downloads()
	}
	if opts.Format == "" {
		opts.Format = lo.Ternary(opts.Audio, viper.GetString(key.DownloadsAudioFormat), viper.GetString(key.DownloadsVideoFormat))
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Downloading %s...", icon.Get(icon.Download), style.Bold(item.Title)))
	path, err := newClient(tools).Download(ctx, item.URL, opts)
	erase()
	if err != nil {
		return err
	}

	fmt.Printf("%s Downloaded to %s\n", icon.Get(icon.Success), style.Bold(path))
	return nil
}
