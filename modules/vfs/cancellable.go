// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
)

// Cancellable lets another goroutine abort blocking backend calls. Backends
// observe it through the context it carries.
type Cancellable struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCancellable(parent context.Context) *Cancellable {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Cancellable{ctx: ctx, cancel: cancel}
}

func (c *Cancellable) Cancel() {
	if c != nil {
		c.cancel()
	}
}

func (c *Cancellable) IsCancelled() bool {
	return c != nil && c.ctx.Err() != nil
}

// Context returns the context to pass to backend calls. A nil Cancellable
// yields context.Background().
func (c *Cancellable) Context() context.Context {
	if c == nil {
		return context.Background()
	}
	return c.ctx
}

// Check returns a Cancelled error once ctx is done.
func Check(ctx context.Context) error {
	if ctx.Err() != nil {
		return &Error{Code: Cancelled, Message: "Operation was cancelled"}
	}
	return nil
}
