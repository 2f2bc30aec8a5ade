package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	logsvc "github.com/ferjoo/tutorias/services/logger"
)

func main() {
	c := newContainer()

	var code int
	err := c.Invoke(func(cli *commandLine, logger core.Logger, rollbar *logsvc.RollbarLogger) {
		defer rollbar.Close()
		if err := cli.run(os.Args); err != nil {
			if !errors.Is(err, errHelp) {
				logger.Error("admin: "+err.Error(), err)
			}
			code = 1
		}
	})
	if err != nil {
		// the container could not be built (config, state files...)
		os.Stderr.WriteString("admin: " + err.Error() + "\n")
		code = 1
	}
	os.Exit(code)
}
