package interact

import (
	"bytes"
	"time"
)

const outputReadChunk = 4096
const inputReadChunk = 1024

type outputMsg struct {
	data []byte
	eof  bool
	err  error
}

// runner drives the interaction loop: a goroutine blocks on transport
// reads and another on stdin reads, each feeding a channel; the main loop
// selects across them plus resize and deadline signals — the Go shape of
// the distilled source's tokio::select! loop, and the same
// read-loop-feeds-a-callback idiom as vt.go's PipeOutput.
type runner struct {
	b           *Builder
	buffer      bytes.Buffer
	currentSize Size
	hasSize     bool
	escapeBuf   []byte
}

func newRunner(b *Builder) *runner {
	r := &runner{b: b}
	if sz, ok := currentTerminalSize(); ok {
		r.currentSize = sz
		r.hasSize = true
	}
	return r
}

func (r *runner) run() (Result, error) {
	b := r.b
	b.hooks.notify(Event{Kind: EventStarted})

	outputCh := make(chan outputMsg, 8)
	go r.pumpOutput(outputCh)

	inputCh := make(chan []byte, 8)
	go r.pumpInput(inputCh)

	resizeCh := watchResize()

	var deadlineCh <-chan time.Time
	if b.hasTimeout {
		deadlineCh = time.After(b.timeout)
	}

	for {
		select {
		case sz := <-resizeCh:
			if res, done := r.handleResize(sz); done {
				return res, nil
			}

		case out := <-outputCh:
			if out.err != nil {
				b.hooks.notify(Event{Kind: EventEnded})
				return Result{}, out.err
			}
			if out.eof {
				b.hooks.notify(Event{Kind: EventEnded})
				return Result{Reason: EndEOF, Buffer: r.buffer.String()}, nil
			}
			processed := b.hooks.processOutput(out.data)
			b.hooks.notify(Event{Kind: EventOutput, Data: processed})
			if b.stdout != nil {
				_, _ = b.stdout.Write(processed)
			}
			r.buffer.Write(processed)
			r.trimBuffer()

			if res, done := r.checkOutputPatterns(); done {
				return res, nil
			}

		case in := <-inputCh:
			if len(in) == 0 {
				continue
			}
			if b.hasEscape {
				r.escapeBuf = append(r.escapeBuf, in...)
				if bytes.HasSuffix(r.escapeBuf, b.escape) {
					b.hooks.notify(Event{Kind: EventExitRequested})
					b.hooks.notify(Event{Kind: EventEnded})
					return Result{Reason: EndEscape, Buffer: r.buffer.String()}, nil
				}
				if len(r.escapeBuf) > len(b.escape) {
					r.escapeBuf = r.escapeBuf[len(r.escapeBuf)-len(b.escape):]
				}
			}

			processed := b.hooks.processInput(in)
			b.hooks.notify(Event{Kind: EventInput, Data: processed})

			if res, done := r.checkInputPatterns(processed); done {
				return res, nil
			}

			_, _ = b.transport.Write(processed)
			_ = b.transport.Flush()

		case <-deadlineCh:
			b.hooks.notify(Event{Kind: EventEnded})
			return Result{Reason: EndTimeout, Buffer: r.buffer.String()}, nil
		}
	}
}

func (r *runner) trimBuffer() {
	if r.b.bufferSize <= 0 {
		return
	}
	if r.buffer.Len() <= r.b.bufferSize {
		return
	}
	trimmed := r.buffer.Bytes()[r.buffer.Len()-r.b.bufferSize:]
	r.buffer.Reset()
	r.buffer.Write(trimmed)
}

func (r *runner) checkOutputPatterns() (Result, bool) {
	for idx, hook := range r.b.outputHooks {
		text := r.buffer.String()
		m, ok := hook.pattern.Matches(text)
		if !ok {
			continue
		}
		ctx := &Context{
			Matched:      text[m.Start:m.End],
			Before:       text[:m.Start],
			After:        text[m.End:],
			Buffer:       text,
			PatternIndex: idx,
		}
		action := hook.callback(ctx)
		switch action.Kind {
		case ActionContinue:
			r.buffer.Reset()
			r.buffer.WriteString(ctx.After)
		case ActionSend:
			_, _ = r.b.transport.Write(action.Payload)
			_ = r.b.transport.Flush()
			r.buffer.Reset()
			r.buffer.WriteString(ctx.After)
		case ActionStop:
			r.b.hooks.notify(Event{Kind: EventEnded})
			return Result{Reason: EndPatternStop, PatternIndex: idx, Buffer: r.buffer.String()}, true
		case ActionError:
			r.b.hooks.notify(Event{Kind: EventEnded})
			return Result{Reason: EndError, Message: action.Message, Buffer: r.buffer.String()}, true
		}
	}
	return Result{}, false
}

func (r *runner) checkInputPatterns(input []byte) (Result, bool) {
	text := string(input)
	for idx, hook := range r.b.inputHooks {
		m, ok := hook.pattern.Matches(text)
		if !ok {
			continue
		}
		ctx := &Context{
			Matched:      text[m.Start:m.End],
			Before:       text[:m.Start],
			After:        text[m.End:],
			Buffer:       text,
			PatternIndex: idx,
		}
		action := hook.callback(ctx)
		switch action.Kind {
		case ActionSend:
			_, _ = r.b.transport.Write(action.Payload)
			_ = r.b.transport.Flush()
		case ActionStop:
			return Result{Reason: EndPatternStop, PatternIndex: idx, Buffer: r.buffer.String()}, true
		case ActionError:
			return Result{Reason: EndError, Message: action.Message, Buffer: r.buffer.String()}, true
		}
	}
	return Result{}, false
}

func (r *runner) handleResize(sz Size) (Result, bool) {
	ctx := &ResizeContext{Size: sz, Previous: r.currentSize, HasPrev: r.hasSize}
	r.currentSize = sz
	r.hasSize = true
	r.b.hooks.notify(Event{Kind: EventResize, Size: sz})

	if r.b.resizeHook == nil {
		return Result{}, false
	}
	action := r.b.resizeHook(ctx)
	switch action.Kind {
	case ActionSend:
		_, _ = r.b.transport.Write(action.Payload)
		_ = r.b.transport.Flush()
	case ActionStop:
		r.b.hooks.notify(Event{Kind: EventEnded})
		return Result{Reason: EndPatternStop, Buffer: r.buffer.String()}, true
	case ActionError:
		r.b.hooks.notify(Event{Kind: EventEnded})
		return Result{Reason: EndError, Message: action.Message, Buffer: r.buffer.String()}, true
	}
	return Result{}, false
}

func (r *runner) pumpOutput(ch chan<- outputMsg) {
	buf := make([]byte, outputReadChunk)
	for {
		res, err := r.b.transport.Read(buf, r.b.mode.ReadTimeout)
		if err != nil {
			ch <- outputMsg{err: err}
			return
		}
		if res.TimedOut {
			continue
		}
		if res.N > 0 {
			cp := append([]byte(nil), buf[:res.N]...)
			ch <- outputMsg{data: cp}
		}
		if res.EOF {
			ch <- outputMsg{eof: true}
			return
		}
	}
}

func (r *runner) pumpInput(ch chan<- []byte) {
	buf := make([]byte, inputReadChunk)
	for {
		n, err := r.b.stdin.Read(buf)
		if n > 0 {
			cp := append([]byte(nil), buf[:n]...)
			ch <- cp
		}
		if err != nil {
			return
		}
	}
}
