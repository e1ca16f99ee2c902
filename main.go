// main is the entry point for the folio CLI.
package main

import (
	"github.com/huangsam/folio/cmd"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	cmd.SetCacheManager(iocache.Manager)

	if err := cmd.Execute(); err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Command failed", err)
	}
	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Failed to stop profiling", err)
	}
}
