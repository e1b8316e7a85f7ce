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

package dialog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RunTerminal consumes requests from the service and answers them over a
// line-based terminal until the service closes or input ends. EOF on input
// cancels the request being answered and stops the loop.
func RunTerminal(s *Service, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	for {
		select {
		case <-s.Done():
			return
		case req := <-s.Requests():
			if !answerTerminal(req, reader, out) {
				return
			}
		}
	}
}

func answerTerminal(req *Request, reader *bufio.Reader, out io.Writer) bool {
	switch req.Kind {
	case KindConfirm:
		fmt.Fprintf(out, "%s [y/N]: ", req.Message)
	case KindPrompt:
		if req.Default != "" {
			fmt.Fprintf(out, "%s [%s]: ", req.Message, req.Default)
		} else {
			fmt.Fprintf(out, "%s: ", req.Message)
		}
	default:
		fmt.Fprintln(out, req.Message)
		req.Resolve(Response{OK: true})
		return true
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		req.Cancel()
		return false
	}
	line = strings.TrimSpace(line)

	switch req.Kind {
	case KindConfirm:
		ok := strings.EqualFold(line, "y") || strings.EqualFold(line, "yes")
		req.Resolve(Response{OK: ok})
	case KindPrompt:
		req.Resolve(Response{OK: true, Text: line})
	}
	return true
}
