package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dana-lang/dana/dana"
)

var runCmd = &cobra.Command{
	Use:   "run <file.na>",
	Short: "Run a Dana source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDana,
}

// traceObserver forwards interp.Observer events to the CLI's zap logger
// when --verbose is set. Installed unconditionally; its methods are cheap
// no-ops to call and logger itself drops anything below Info unless
// --verbose raised the level.
type traceObserver struct {
	log *zap.SugaredLogger
}

func (o traceObserver) Statement(file string, line int) {
	o.log.Debugf("%s:%d", file, line)
}

func (o traceObserver) Error(err error) {
	o.log.Errorw("program error", "error", err)
}

func (o traceObserver) ResourceAcquired(kind, name string) {
	o.log.Debugf("acquired resource %s.%s", kind, name)
}

func runDana(cmd *cobra.Command, args []string) error {
	file := args[0]

	opts := dana.Options{
		ConfigPath:  configPath,
		SearchPaths: danaPath,
		Observer:    traceObserver{log: logger.Sugar()},
	}

	ip, err := dana.New(opts)
	if err != nil {
		return fmt.Errorf("initialize interpreter: %w", err)
	}
	defer ip.Close()

	runErr := runWithTimeout(ip, file)
	if runErr != nil {
		return fmt.Errorf("%s: %w", file, runErr)
	}
	return nil
}

func runWithTimeout(ip *dana.Interpreter, file string) error {
	if timeout <= 0 {
		return ip.RunFile(file)
	}

	done := make(chan error, 1)
	go func() { done <- ip.RunFile(file) }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return errors.New("program timed out")
	}
}
