package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/config"
	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/icon"
	"github.com/tubecli/tube/style"
	"golang.org/x/exp/slices"
)

// closestKey is the registered key with the smallest edit distance to k.
func closestKey(k string) string {
	return lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(k, a) < levenshtein.Distance(k, b)
	})
}

// lookupField resolves k, suggesting the closest key on a typo.
func lookupField(k string) (config.Field, error) {
	field, err := config.Lookup(k)
	if errors.Is(err, config.ErrUnknownKey) {
		return field, fmt.Errorf(
			"unknown key %s, did you mean %s?",
			style.Fg(color.Red)(k),
			style.Fg(color.Yellow)(closestKey(k)),
		)
	}
	return field, err
}

// keyArg takes the key from the first argument or the --key flag.
func keyArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if k := lo.Must(cmd.Flags().GetString("key")); k != "" {
		return k, nil
	}
	return "", errors.New("key is required as an argument or --key flag")
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func printDone(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Keys to describe, all of them by default")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	lo.Must0(configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys))

	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "Key to read")
	lo.Must0(configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys))

	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "Key to update")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "New value, repeat for lists")
	lo.Must0(configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys))

	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configDeleteCmd)

	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().StringP("key", "k", "", "Key to restore")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	configResetCmd.MarkFlagsOneRequired("key", "all")
	lo.Must0(configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys))
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration fields",
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)

		if keys := lo.Must(cmd.Flags().GetStringSlice("key")); len(keys) > 0 {
			fields = lo.Map(keys, func(k string, _ int) config.Field {
				field, err := lookupField(k)
				handleErr(err)
				return field
			})
		}

		slices.SortFunc(fields, func(a, b config.Field) int {
			return strings.Compare(a.Key, b.Key)
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(lo.ToSlicePtr(fields)))
			return
		}

		pretty := lo.Map(fields, func(f config.Field, _ int) string { return f.Pretty() })
		cmd.Println(strings.Join(pretty, "\n\n"))
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the current value of a key",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k, err := keyArg(cmd, args)
		handleErr(err)
		_, err = lookupField(k)
		handleErr(err)

		cmd.Println(viper.Get(k))
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value...]",
	Short:             "Update the value of a key",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k, err := keyArg(cmd, args)
		handleErr(err)
		field, err := lookupField(k)
		handleErr(err)

		values := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			values = args[1:]
		}

		v, err := field.Parse(values)
		handleErr(err)

		viper.Set(k, v)
		handleErr(config.Write())
		printDone("set %s to %s", style.Fg(color.Purple)(k), style.Fg(color.Yellow)(fmt.Sprint(v)))
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := config.Path()

		if lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(filesystem.RemoveIfExists(path))
		}

		handleErr(viper.SafeWriteConfigAs(path))
		printDone("wrote config to %s", path)
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.RemoveIfExists(config.Path()))
		printDone("deleted config")
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore keys to their default values",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for k, field := range config.Default {
				viper.Set(k, field.Value)
			}
			handleErr(config.Write())
			printDone("reset all config values")
			return
		}

		k := lo.Must(cmd.Flags().GetString("key"))
		field, err := lookupField(k)
		handleErr(err)

		viper.Set(k, field.Value)
		handleErr(config.Write())
		printDone("reset %s to %s", style.Fg(color.Purple)(k), style.Fg(color.Yellow)(fmt.Sprint(field.Value)))
	},
}
