/*
Draws the tinted logo quad. Keys edit the tint and the clear colour,
Escape quits.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/tinted/engine"
	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/testbed"
)

const configPath = "config.toml"

func main() {
	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		core.LogFatal("failed to load %s: %s", configPath, err)
	}
	if !core.SetLogLevel(cfg.Log.Level) {
		core.LogWarn("unknown log level %q, keeping debug", cfg.Log.Level)
	}

	tb := testbed.NewTestGame(cfg)

	engine, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := engine.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = engine.Shutdown()
	}()

	// run engine
	if err := engine.Run(); err != nil {
		core.LogFatal(err.Error())
	}
}
