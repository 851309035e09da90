package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/petsview/cmd"
	"github.com/oakwood-commons/petsview/pkg/logger"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		logger.GetGlobalLogger().Error(err, "command failed")
		fmt.Fprintln(os.Stderr, err)
		exitCode = 1
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
