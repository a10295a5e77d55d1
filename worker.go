/*
 * SPDX-License-Identifier: Unlicense
 *
 * This is free and unencumbered software released into the public domain.
 *
 * Anyone is free to copy, modify, publish, use, compile, sell, or distribute this
 * software, either in source code form or as a compiled binary, for any purpose,
 * commercial or non-commercial, and by any means.
 *
 * For more information, please refer to <http://unlicense.org/>
 */

package main

import (
	"context"
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

type detectRequest struct {
	ctx       context.Context
	img       gocv.Mat
	inputPath string
	reply     chan detectReply
}

type detectReply struct {
	result *LayoutResult
	err    error
}

// modelWorker owns the pipeline and serves requests one at a time, since
// interpreters cannot be shared between goroutines.
type modelWorker struct {
	in       chan detectRequest
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func startModelWorker(p *Pipeline) *modelWorker {
	w := &modelWorker{
		in:       make(chan detectRequest),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run(p)
	return w
}

func (w *modelWorker) run(p *Pipeline) {
	defer close(w.done)
	for {
		var req detectRequest
		select {
		case req = <-w.in:
		case <-w.stopping:
			return
		}
		if err := req.ctx.Err(); err != nil {
			req.reply <- detectReply{err: err}
			continue
		}
		result, prepared, err := p.Process(req.ctx, req.img, req.inputPath)
		prepared.Close()
		req.reply <- detectReply{result: result, err: err}
	}
}

// ErrWorkerStopped is returned by Submit once Stop has been called.
var ErrWorkerStopped = errors.New("model worker stopped")

// Submit queues img and waits for its result. img must stay open until
// Submit returns.
func (w *modelWorker) Submit(ctx context.Context, img gocv.Mat, inputPath string) (*LayoutResult, error) {
	reply := make(chan detectReply, 1)
	select {
	case w.in <- detectRequest{ctx: ctx, img: img, inputPath: inputPath, reply: reply}:
	case <-w.stopping:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	r := <-reply
	return r.result, r.err
}

// Stop waits for the request in flight and ends the worker. Later calls to
// Submit fail with ErrWorkerStopped.
func (w *modelWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopping) })
	<-w.done
}
