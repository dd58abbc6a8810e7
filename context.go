// seehuhn.de/go/ccm - colour management core for image processing
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ccm

import (
	"sync"

	"go.uber.org/zap"
)

// BufferPool supplies and reclaims scratch byte slices used while running a
// transform. It is the Go analogue of the allocator-hook pair a C colour
// engine threads through its context object. The zero value of [Context]
// uses [DefaultBufferPool], which wraps a [sync.Pool].
type BufferPool interface {
	Get(n int) []byte
	Put([]byte)
}

type poolBufferPool struct {
	pool sync.Pool
}

// DefaultBufferPool returns a [BufferPool] backed by sync.Pool.
func DefaultBufferPool() BufferPool {
	return &poolBufferPool{}
}

func (p *poolBufferPool) Get(n int) []byte {
	if v := p.pool.Get(); v != nil {
		buf := v.([]byte)
		if cap(buf) >= n {
			return buf[:n]
		}
	}
	return make([]byte, n)
}

func (p *poolBufferPool) Put(buf []byte) {
	p.pool.Put(buf[:0]) //nolint:staticcheck // capacity is what's reused
}

// Context carries the state every operation in this package needs but that
// must never live in a package-level variable: a logger, the worker-task
// count, whether the built-in colour-management path is allowed, and a
// buffer pool. There is no global mutable state anywhere in this package;
// callers construct and pass a Context explicitly.
//
// The zero Context is valid: a nil Logger behaves like [zap.NewNop], Jobs
// defaults to 1, and a nil Pool falls back to [DefaultBufferPool].
// CCMMAllowed has no such default: it is false in a zero Context, so a
// transform with an engine installed via [EngineTransform.SetEngine] hands
// its work to that engine. [NewContext] sets CCMMAllowed to true, and a nil
// *Context is treated as allowing the built-in path.
type Context struct {
	Logger      *zap.Logger
	Jobs        int
	CCMMAllowed bool
	Pool        BufferPool

	// Codecs carries options that exist only to be forwarded to external
	// container/codec collaborators; the colour core never reads them.
	Codecs CodecOptions
}

// CodecOptions are transform-subsystem configuration fields that the colour
// core accepts and forwards but never consumes itself; they exist so a
// caller assembling one Options/Context value for the whole image-processing
// toolkit has somewhere to put codec-level settings.
type CodecOptions struct {
	WriteCodec   string
	ReadCodec    string
	YUVFormat    string
	Speed        int
	QuantizerMin int
	QuantizerMax int
	TileRowsLog2 int
	TileColsLog2 int
	Quality      int
}

func (c *Context) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Context) jobs() int {
	if c == nil || c.Jobs < 1 {
		return 1
	}
	return c.Jobs
}

func (c *Context) ccmmAllowed() bool {
	return c == nil || c.CCMMAllowed
}

func (c *Context) pool() BufferPool {
	if c == nil || c.Pool == nil {
		return DefaultBufferPool()
	}
	return c.Pool
}

// Option configures a [Context] via [NewContext].
type Option func(*Context)

// WithJobs sets the worker-task count used by [EngineTransform.Run].
func WithJobs(n int) Option {
	return func(c *Context) { c.Jobs = n }
}

// WithCCMMAllowed controls whether the built-in colour-management path may
// be used; when false, callers relying on an external engine must supply
// one through [EngineTransform.SetEngine].
func WithCCMMAllowed(allowed bool) Option {
	return func(c *Context) { c.CCMMAllowed = allowed }
}

// WithLogger sets the structured logger used for warnings and diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) { c.Logger = l }
}

// WithCodecOptions attaches codec pass-through options.
func WithCodecOptions(opts CodecOptions) Option {
	return func(c *Context) { c.Codecs = opts }
}

// NewContext builds a Context with the given options applied over sensible
// defaults (Jobs=1, CCMMAllowed=true).
func NewContext(opts ...Option) *Context {
	c := &Context{Jobs: 1, CCMMAllowed: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
