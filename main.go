// main is the entry point for the stockcast CLI.
package main

import (
	"github.com/huangsam/stockcast/cmd"
	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	defer iocache.CloseStores()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.LogFatal("Command failed", err)
	}
}
