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

package sheet

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount fields hold free-text numeric expressions like "5k+300-1k". The
// grammar is deliberately tiny: signed terms of digits with an optional
// trailing k meaning thousands. Anything else in a term contributes 0.
var termPattern = regexp.MustCompile(`^\d+k?$`)

// sanitizeAmount lowercases the expression and strips every rune that is
// not a digit, k, sign, or space, then collapses runs of whitespace.
func sanitizeAmount(expr string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(expr) {
		switch {
		case r >= '0' && r <= '9', r == 'k', r == '+', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// splitTerms breaks a sanitized expression into terms and the sign that
// precedes each. Consecutive signs are not combined; the last one before a
// term wins.
func splitTerms(expr string) []signedTerm {
	var (
		terms []signedTerm
		cur   strings.Builder
		sign  = 1
	)
	flush := func() {
		terms = append(terms, signedTerm{sign: sign, text: cur.String()})
		cur.Reset()
	}
	for _, r := range expr {
		switch r {
		case '+':
			if cur.Len() > 0 {
				flush()
			}
			sign = 1
		case '-':
			if cur.Len() > 0 {
				flush()
			}
			sign = -1
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		flush()
	}
	return terms
}

type signedTerm struct {
	sign int
	text string
}

// value evaluates a single term. Inner spaces are stripped first so that a
// previously formatted amount like "12 345" evaluates back to itself.
func (t signedTerm) value() int {
	text := strings.ReplaceAll(t.text, " ", "")
	if !termPattern.MatchString(text) {
		return 0
	}
	mul := 1
	if strings.HasSuffix(text, "k") {
		mul = 1000
		text = strings.TrimSuffix(text, "k")
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return t.sign * n * mul
}

// EvaluateAmount computes the signed left-to-right sum of an amount
// expression. Empty or unrecognized input evaluates to 0.
func EvaluateAmount(expr string) int {
	total := 0
	for _, t := range splitTerms(sanitizeAmount(expr)) {
		total += t.value()
	}
	return total
}

// FormatAmount rewrites an expression for display: digits within each valid
// term are grouped by thousands, a trailing k suffix and the inter-term
// signs are preserved. The evaluated total never changes.
func FormatAmount(expr string) string {
	sanitized := sanitizeAmount(expr)
	if sanitized == "" {
		return ""
	}
	var b strings.Builder
	for i, t := range splitTerms(sanitized) {
		if i > 0 || t.sign < 0 {
			if t.sign < 0 {
				b.WriteByte('-')
			} else {
				b.WriteByte('+')
			}
		}
		text := strings.ReplaceAll(t.text, " ", "")
		if !termPattern.MatchString(text) {
			b.WriteString(text)
			continue
		}
		digits := strings.TrimSuffix(text, "k")
		b.WriteString(groupDigits(digits))
		if strings.HasSuffix(text, "k") {
			b.WriteByte('k')
		}
	}
	return b.String()
}

// CollapseAmount evaluates the expression and renders the total as fully
// expanded grouped digits, so "2k" collapses to "2 000". Empty input stays
// empty.
func CollapseAmount(expr string) string {
	if sanitizeAmount(expr) == "" {
		return ""
	}
	total := EvaluateAmount(expr)
	if total < 0 {
		return "-" + groupDigits(strconv.Itoa(-total))
	}
	return groupDigits(strconv.Itoa(total))
}

// groupDigits inserts a space every three digits from the right.
func groupDigits(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
