// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package signal maps process termination signals to run cancellation.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Context returns a context cancelled on SIGINT or SIGTERM, so an operator
// interrupt stops the search at the next iteration boundary.  The returned
// stop function releases the signal watcher.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-terminate:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(terminate)
	}()
	return ctx, cancel
}
