// Package main is the entry point for tube.
package main

import (
	"github.com/samber/lo"
	"github.com/tubecli/tube/cmd"
	"github.com/tubecli/tube/config"
	"github.com/tubecli/tube/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cmd.SearchCache().CollectGarbage()

	cmd.Execute()
}
