package runner

import (
	"context"
	"regexp"
	"time"
)

type response struct {
	text string
	err  error
}

// fakeSession replays one response per ReadToPrompt call, recording every
// line written.
type fakeSession struct {
	responses []response
	written   []string
	prompts   [][]string
	timeouts  []time.Duration
	buffered  string
	writeErr  error
}

func (x *fakeSession) ReadToPrompt(_ context.Context, timeout time.Duration, prompts ...*regexp.Regexp) (string, error) {
	var exprs []string
	for _, p := range prompts {
		exprs = append(exprs, p.String())
	}
	x.prompts = append(x.prompts, exprs)
	x.timeouts = append(x.timeouts, timeout)
	if len(x.responses) == 0 {
		return ``, errTestExhausted
	}
	r := x.responses[0]
	x.responses = x.responses[1:]
	return r.text, r.err
}

func (x *fakeSession) WriteLine(text string) error {
	if x.writeErr != nil {
		return x.writeErr
	}
	x.written = append(x.written, text)
	return nil
}

func (x *fakeSession) Buffered() string {
	return x.buffered
}
