// Package swap holds the swap form state and submits swaps through the router.
package swap

import (
	"sync"

	"dexswap/pkg/quote"
	"dexswap/pkg/token"
)

// Values is a snapshot of the swap form
type Values struct {
	TokenIn   token.Asset
	TokenOut  token.Asset
	AmountIn  string
	AmountOut string
}

// Request converts the snapshot into a quote request
func (v Values) Request() quote.Request {
	return quote.Request{TokenIn: v.TokenIn, TokenOut: v.TokenOut, AmountIn: v.AmountIn}
}

// State is the swap form shared between the quote loop and the CLI.
// Subscribers are called synchronously after every change.
type State struct {
	mu     sync.Mutex
	values Values
	subs   map[int]func(Values)
	nextID int
}

func NewState(tokenIn, tokenOut token.Asset) *State {
	return &State{
		values: Values{TokenIn: tokenIn, TokenOut: tokenOut},
		subs:   make(map[int]func(Values)),
	}
}

// Snapshot returns the current values
func (s *State) Snapshot() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// Subscribe registers fn and returns a function that removes it
func (s *State) Subscribe(fn func(Values)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetTokenIn selects the input token. Picking the current output token
// flips the pair instead.
func (s *State) SetTokenIn(a token.Asset) {
	s.update(func(v *Values) {
		if a.Address() == v.TokenOut.Address() {
			flip(v)
			return
		}
		v.TokenIn = a
		v.AmountOut = ""
	})
}

func (s *State) SetTokenOut(a token.Asset) {
	s.update(func(v *Values) {
		if a.Address() == v.TokenIn.Address() {
			flip(v)
			return
		}
		v.TokenOut = a
		v.AmountOut = ""
	})
}

// SetAmountIn records user input; the output is stale until the next quote
func (s *State) SetAmountIn(amount string) {
	s.update(func(v *Values) {
		v.AmountIn = amount
		v.AmountOut = ""
	})
}

// ApplyResult stores a quote result, ignoring results for an input that is
// no longer current
func (s *State) ApplyResult(r quote.Result) {
	s.update(func(v *Values) {
		if r.Request.AmountIn != v.AmountIn ||
			r.Request.TokenIn.Address() != v.TokenIn.Address() ||
			r.Request.TokenOut.Address() != v.TokenOut.Address() {
			return
		}
		if r.Quote == nil {
			v.AmountOut = ""
			return
		}
		v.AmountOut = r.Quote.AmountOutString()
	})
}

// Flip swaps the tokens and the amounts. Settings are not part of the form
// and are left alone.
func (s *State) Flip() {
	s.update(flip)
}

func flip(v *Values) {
	v.TokenIn, v.TokenOut = v.TokenOut, v.TokenIn
	v.AmountIn, v.AmountOut = v.AmountOut, v.AmountIn
}

func (s *State) update(fn func(*Values)) {
	s.mu.Lock()
	fn(&s.values)
	values := s.values
	subs := make([]func(Values), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(values)
	}
}
