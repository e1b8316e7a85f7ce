// Copyright 2025 Poiesic Systems
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

// Package dialog carries user confirmation flows as request/response
// pairs. A caller blocks on Alert, Confirm, or Prompt while a runner (a
// terminal loop, or a test) consumes the request and resolves it. Each
// request resolves exactly once; closing the service resolves everything
// pending as cancelled.
package dialog

import (
	"context"
	"errors"
	"sync"
)

// Kind discriminates the dialog flavors.
type Kind int

const (
	KindAlert Kind = iota
	KindConfirm
	KindPrompt
)

// ErrClosed is returned to callers once the service has shut down.
var ErrClosed = errors.New("dialog service closed")

// Response carries the user's answer. OK is false on cancellation.
type Response struct {
	OK   bool
	Text string
}

// Request is one pending dialog. Resolve may be called any number of
// times; only the first call delivers.
type Request struct {
	Kind    Kind
	Message string
	Default string

	once sync.Once
	done chan Response
}

// Resolve delivers the answer. Calls after the first are no-ops.
func (r *Request) Resolve(resp Response) {
	r.once.Do(func() { r.done <- resp })
}

// Cancel resolves the request as dismissed.
func (r *Request) Cancel() {
	r.Resolve(Response{})
}

// Service queues dialog requests for a single consumer.
type Service struct {
	mu       sync.Mutex
	closed   bool
	closing  chan struct{}
	requests chan *Request
}

func NewService() *Service {
	return &Service{
		closing:  make(chan struct{}),
		requests: make(chan *Request, 8),
	}
}

// Requests is the consumer side. Select on Done alongside it; the channel
// itself stays open so late senders never panic.
func (s *Service) Requests() <-chan *Request {
	return s.requests
}

// Done is closed when the service shuts down.
func (s *Service) Done() <-chan struct{} {
	return s.closing
}

// Close shuts the service down. Blocked callers return with a cancelled
// response; undelivered requests are dropped.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.closing)
	return nil
}

func (s *Service) ask(ctx context.Context, req *Request) (Response, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Response{}, ErrClosed
	}
	req.done = make(chan Response, 1)
	select {
	case s.requests <- req:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		select {
		case s.requests <- req:
		case <-s.closing:
			return Response{}, ErrClosed
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}

	select {
	case resp := <-req.done:
		return resp, nil
	case <-s.closing:
		req.Cancel()
		return Response{}, ErrClosed
	case <-ctx.Done():
		req.Cancel()
		return Response{}, ctx.Err()
	}
}

// Alert shows a message and waits for dismissal.
func (s *Service) Alert(ctx context.Context, message string) error {
	_, err := s.ask(ctx, &Request{Kind: KindAlert, Message: message})
	return err
}

// Confirm asks a yes/no question. Cancellation reads as no.
func (s *Service) Confirm(ctx context.Context, message string) (bool, error) {
	resp, err := s.ask(ctx, &Request{Kind: KindConfirm, Message: message})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

// Prompt asks for a line of text. ok is false when the user cancelled.
func (s *Service) Prompt(ctx context.Context, message, defaultText string) (text string, ok bool, err error) {
	resp, err := s.ask(ctx, &Request{Kind: KindPrompt, Message: message, Default: defaultText})
	if err != nil {
		return "", false, err
	}
	text = resp.Text
	if resp.OK && text == "" {
		text = defaultText
	}
	return text, resp.OK, nil
}
