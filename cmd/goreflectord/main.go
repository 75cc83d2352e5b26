/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	spfcbr "github.com/spf13/cobra"

	libcbr "github.com/svxreflector/goreflector/cobra"
	"github.com/svxreflector/goreflector/control"
	"github.com/svxreflector/goreflector/logger"
	libver "github.com/svxreflector/goreflector/version"
)

var (
	buildVersion = "dev"
	buildDate    = "2024-01-01T00:00:00Z"
	buildHash    = "unknown"
)

var (
	flagConfig  string
	flagPKIRoot string
	flagPTY     bool
)

func main() {
	app := libcbr.New()
	app.SetVersion(libver.NewVersion(
		libver.License_MIT,
		"goreflectord",
		"SvxReflector-compatible audio reflector daemon",
		buildDate,
		buildHash,
		buildVersion,
		"SvxReflector contributors",
		"GOREFLECTOR",
		struct{}{},
		0,
	))
	app.Init()

	if err := app.SetFlagConfig(true, &flagConfig); err != nil {
		logger.ErrorLevel.Logf("flag registration failed: %s", err.Error())
		os.Exit(1)
	}
	app.AddFlagString(true, &flagPKIRoot, "pki-root", "", "./pki", "directory holding the embedded PKI's root/issuing/server material")
	app.AddFlagBool(true, &flagPTY, "console", "", false, "run the interactive operator console on stdin/stdout alongside the server")
	app.AddCommandCompletion()

	app.Cobra().RunE = func(cmd *spfcbr.Command, args []string) error {
		return run(cmd.Context())
	}

	if err := app.Execute(); err != nil {
		logger.ErrorLevel.Logf("%s", err.Error())
		os.Exit(1)
	}
}

// run builds and serves one reflector instance until an OS signal or a
// startup failure ends it. Only a startup failure produces a non-zero
// exit (§6).
func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv, err := NewServer(ctx, flagConfig, flagPKIRoot)
	if err != nil {
		return err
	}

	if flagPTY {
		console := control.Bootstrap(srv.ca, srv.cfg)
		go control.NewPTY(console).Run()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-quit
		logger.InfoLevel.Logf("shutdown signal received")
		srv.Shutdown()
	}()

	logger.InfoLevel.Logf("goreflectord %s listening on port %d", buildVersion, srv.cfg.ListenPort())
	if serr := srv.Serve(); serr != nil {
		return serr
	}
	return nil
}
