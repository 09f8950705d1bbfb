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


// Command feedgen writes a synthetic newline-delimited JSON source feed for
// exercising the ingestion pipeline. Bodies are sized in words so that feeds
// which force chunk splitting are easy to produce.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

var sentences = []string{
	"Indexes support the efficient execution of queries and should match the query shape.",
	"A replica set is a group of processes that maintain the same data set.",
	"Sharding distributes data across multiple machines to support large data sets.",
	"The aggregation pipeline processes documents through a sequence of stages.",
	"Write concern describes the level of acknowledgment requested for write operations.",
	"Time-series collections efficiently store sequences of measurements over time.",
	"Change streams allow applications to subscribe to data changes in real time.",
	"A compound index holds references to documents sorted by multiple fields.",
	"Read preference determines which replica set members receive read operations.",
	"Schema validation enforces document structure during inserts and updates.",
	"TTL indexes automatically remove documents after a specified number of seconds.",
	"Transactions provide atomicity across multiple documents and collections.",
	"The query planner selects the most efficient plan among candidate plans.",
	"Capped collections maintain insertion order and have a fixed maximum size.",
	"Vector search retrieves documents by semantic similarity of their embeddings.",
}

var titles = []string{
	"Indexing Strategies",
	"Replication Basics",
	"Scaling with Shards",
	"Aggregation Deep Dive",
	"Durability and Write Concerns",
	"Working with Time Series",
	"Reacting to Changes",
	"Schema Design",
}

var (
	outFileName = flag.String("out", "", "output file (defaults to stdout)")
	recordCount = flag.Int("records", 50, "number of feed records to generate")
	bodyWords   = flag.Int("body-words", 300, "approximate words per record body")
)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// buildBody cycles through the sentence pool until the body reaches the
// requested word count.
func buildBody(seed, words int) string {
	var sb strings.Builder
	count := 0
	for i := seed; count < words; i++ {
		sentence := sentences[i%len(sentences)]
		sb.WriteString(sentence)
		sb.WriteString(" ")
		count += len(strings.Fields(sentence))
	}
	return strings.TrimRight(sb.String(), " ")
}

func writeFeed(w io.Writer, records, words int) error {
	bw := bufio.NewWriter(w)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < records; i++ {
		title := titles[i%len(titles)]
		record := map[string]any{
			"body":       buildBody(i, words),
			"title":      fmt.Sprintf("%s %d", title, i+1),
			"sourceName": "feedgen",
			"url":        fmt.Sprintf("https://docs.example.com/generated/%d", i+1),
			"action":     "created",
			"format":     "markdown",
			"updated":    base.AddDate(0, 0, i).Format(time.RFC3339),
			"metadata": map[string]any{
				"tags":            []string{"generated", title},
				"pageDescription": title,
				"contentType":     "tutorial",
			},
		}

		line, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(line, '\n')); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func main() {
	out := os.Stdout
	if *outFileName != "" {
		f, err := os.Create(*outFileName)
		if err != nil {
			slog.Error("failed to create output file", "path", *outFileName, "err", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := writeFeed(out, *recordCount, *bodyWords); err != nil {
		slog.Error("failed to write feed", "err", err)
		os.Exit(1)
	}

	slog.Info("feed generated", "records", *recordCount, "bodyWords", *bodyWords)
}
