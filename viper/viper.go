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

// Package viper is a thin, logging-aware wrapper around spf13/viper used
// to layer CLI flags, environment variables and a config file on top of
// each other for the serve command (§6 ambient configuration). The INI
// hot-reload store (package reflcfg) owns the reflector's own runtime
// config; this package only feeds the cobra command tree's persistent
// flags (--config, --listen, --pki-root, ...).
package viper

import (
	"context"
	"strings"
	"time"

	spfflg "github.com/spf13/pflag"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/svxreflector/goreflector/errors"
	"github.com/svxreflector/goreflector/logger"
)

// Viper is the subset of behavior the cobra command tree and main
// binary need from a layered config source.
type Viper interface {
	SetConfigFile(path string)
	SetEnvPrefix(prefix string)
	BindEnv(keys ...string) error
	BindPFlag(key string, flag *spfflg.Flag) error

	ReadInConfig() liberr.Error

	Get(key string) interface{}
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetDuration(key string) time.Duration

	Set(key string, value interface{})
	Unmarshal(out interface{}) liberr.Error
}

type vpr struct {
	ctx context.Context
	log logger.Logger
	v   *spfvpr.Viper
}

// New builds a Viper bound to ctx and logging through log. Matches the
// teacher's (ctx, logger) construction pattern used across the other
// ambient-config helpers.
func New(ctx context.Context, log logger.Logger) Viper {
	return &vpr{
		ctx: ctx,
		log: log,
		v:   spfvpr.New(),
	}
}

func (w *vpr) SetConfigFile(path string) { w.v.SetConfigFile(path) }

func (w *vpr) SetEnvPrefix(prefix string) {
	w.v.SetEnvPrefix(strings.ToUpper(prefix))
	w.v.AutomaticEnv()
}

func (w *vpr) BindEnv(keys ...string) error { return w.v.BindEnv(keys...) }

func (w *vpr) BindPFlag(key string, flag *spfflg.Flag) error { return w.v.BindPFlag(key, flag) }

func (w *vpr) ReadInConfig() liberr.Error {
	if err := w.v.ReadInConfig(); err != nil {
		if w.log != nil {
			logger.WarnLevel.Logf("viper: config read failed: %s", err.Error())
		}
		return ErrorConfigRead.ErrorParent(err)
	}
	return nil
}

func (w *vpr) Get(key string) interface{}         { return w.v.Get(key) }
func (w *vpr) GetString(key string) string         { return w.v.GetString(key) }
func (w *vpr) GetBool(key string) bool             { return w.v.GetBool(key) }
func (w *vpr) GetInt(key string) int               { return w.v.GetInt(key) }
func (w *vpr) GetDuration(key string) time.Duration { return w.v.GetDuration(key) }

func (w *vpr) Set(key string, value interface{}) { w.v.Set(key, value) }

func (w *vpr) Unmarshal(out interface{}) liberr.Error {
	if err := w.v.Unmarshal(out); err != nil {
		return ErrorConfigRead.ErrorParent(err)
	}
	return nil
}
