// Copyright 2025 Arcova Systems
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


package ingest

import "strings"

// DefaultMaxTokens is the token budget applied to chunks when no explicit
// budget is configured.
const DefaultMaxTokens = 2000

// wordTokenCost estimates the token cost of a single word.
// Truncating integer division by four, a fixed approximation rather than a
// real tokenizer. Must stay stable: chunk boundaries depend on it.
func wordTokenCost(word string) int {
	return len(word) / 4
}

// SplitChunks partitions text into an ordered sequence of chunks whose
// estimated token cost stays within maxTokens.
//
// Words are whitespace-delimited and never split. A single word whose own
// cost exceeds maxTokens occupies its own chunk, which may exceed the budget
// by that word's cost. Empty or whitespace-only text yields no chunks, and
// no emitted chunk is ever empty.
func SplitChunks(text string, maxTokens int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var buf strings.Builder
	total := 0

	for _, word := range words {
		cost := wordTokenCost(word)
		if total+cost > maxTokens {
			if buf.Len() > 0 {
				chunks = append(chunks, strings.TrimRight(buf.String(), " "))
				buf.Reset()
			}
			total = 0
		}
		buf.WriteString(word)
		buf.WriteString(" ")
		total += cost
	}

	if buf.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(buf.String(), " "))
	}

	return chunks
}
