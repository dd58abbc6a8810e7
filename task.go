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
	"context"
	"sync"
)

// runTasks splits pixelCount pixels into at most taskCount contiguous,
// disjoint slices and runs work on each concurrently, joining before
// returning. taskCount is clamped down to pixelCount; a taskCount of 1 (or
// a pixelCount of 1) runs inline without spawning a goroutine. Workers never
// need to synchronise with each other: each one only ever touches its own
// slice of the underlying buffers.
//
// ctx is checked for cancellation once, before any worker is dispatched; a
// run already in flight always completes, it is never aborted mid-pass.
func runTasks(ctx context.Context, pixelCount, taskCount int, work func(start, count int)) error {
	if taskCount > pixelCount {
		taskCount = pixelCount
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if taskCount <= 1 {
		work(0, pixelCount)
		return nil
	}

	pixelsPerTask := pixelCount / taskCount
	var wg sync.WaitGroup
	wg.Add(taskCount)
	for i := 0; i < taskCount; i++ {
		start := i * pixelsPerTask
		count := pixelsPerTask
		if i == taskCount-1 {
			count = pixelCount - start
		}
		go func(start, count int) {
			defer wg.Done()
			work(start, count)
		}(start, count)
	}
	wg.Wait()
	return nil
}
