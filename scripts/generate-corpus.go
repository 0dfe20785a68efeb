//go:build ignore

// Package main generates a synthetic caption corpus for load testing.
// Usage: go run scripts/generate-corpus.go -videos 200 -output testdata/corpus
//
// The output is a pair of JSONL files ready for `subseek load`:
//
//	subseek load --captions testdata/corpus/captions.jsonl --videos testdata/corpus/videos.jsonl
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numVideos   = flag.Int("videos", 200, "Number of videos to generate")
	avgCaptions = flag.Int("captions", 120, "Average captions per video")
	outputDir   = flag.String("output", "testdata/corpus", "Output directory")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Word pools for caption sentences. Repeated phrases give realistic
// term frequencies so relevance ranking has something to chew on.
var (
	openers = []string{
		"today we are going to", "in this part we", "let's", "now we can",
		"the next step is to", "before that we should", "remember to",
		"a lot of people ask how to", "the trick here is to",
	}
	verbs = []string{
		"build", "configure", "test", "deploy", "refactor", "measure",
		"debug", "install", "compare", "optimize", "explain", "review",
	}
	objects = []string{
		"the search index", "the caption pipeline", "this function",
		"the whole project", "our database schema", "the streaming setup",
		"the new release", "a small example", "the benchmark suite",
		"the configuration file", "the ranking model", "the video player",
	}
	closers = []string{
		"step by step", "from scratch", "in production", "the easy way",
		"without extra tools", "and see what happens", "like we did before",
		"one more time", "", "",
	}
	channelNames = []string{
		"CodeCraft", "DataDen", "PixelForge", "TerminalTips", "StackStories",
		"ByteBistro", "KernelKitchen", "QueryQuarters",
	}
	titleTopics = []string{
		"Search Engines", "Caption Workflows", "Go Services", "SQL Deep Dive",
		"Streaming Basics", "Index Internals", "API Design", "Text Analysis",
	}
	tagPool = []string{
		"tutorial", "programming", "search", "golang", "database",
		"captions", "howto", "backend", "performance",
	}
)

type caption struct {
	VideoID   string  `json:"video_id"`
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type video struct {
	VideoID      string   `json:"video_id"`
	Title        string   `json:"title"`
	ChannelID    string   `json:"channel_id"`
	ChannelName  string   `json:"channel_name"`
	UploadDate   int64    `json:"upload_date"`
	Duration     float64  `json:"duration"`
	Views        int64    `json:"views"`
	Likes        int64    `json:"likes"`
	CommentCount int64    `json:"comment_count"`
	Tags         []string `json:"tags,omitempty"`
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("create output dir: %v", err)
	}

	capFile, err := os.Create(filepath.Join(*outputDir, "captions.jsonl"))
	if err != nil {
		fatal("create captions file: %v", err)
	}
	defer capFile.Close()

	vidFile, err := os.Create(filepath.Join(*outputDir, "videos.jsonl"))
	if err != nil {
		fatal("create videos file: %v", err)
	}
	defer vidFile.Close()

	capEnc := json.NewEncoder(capFile)
	vidEnc := json.NewEncoder(vidFile)

	totalCaptions := 0
	for i := 0; i < *numVideos; i++ {
		id := fmt.Sprintf("vid%05d", i)

		// 0.5x to 1.5x the average, so video lengths vary.
		n := *avgCaptions/2 + rng.Intn(*avgCaptions+1)
		if n < 1 {
			n = 1
		}

		t := 0.0
		for j := 0; j < n; j++ {
			dur := 2.0 + rng.Float64()*4.0
			c := caption{
				VideoID:   id,
				Text:      sentence(rng),
				StartTime: round2(t),
				EndTime:   round2(t + dur),
			}
			if err := capEnc.Encode(c); err != nil {
				fatal("write caption: %v", err)
			}
			t += dur + rng.Float64()*1.5
			totalCaptions++
		}

		channel := rng.Intn(len(channelNames))
		views := int64(rng.Intn(2_000_000))
		v := video{
			VideoID:      id,
			Title:        fmt.Sprintf("%s Part %d", titleTopics[rng.Intn(len(titleTopics))], i%24+1),
			ChannelID:    fmt.Sprintf("ch%03d", channel),
			ChannelName:  channelNames[channel],
			UploadDate:   1_500_000_000 + int64(rng.Intn(250_000_000)),
			Duration:     round2(t),
			Views:        views,
			Likes:        views / int64(10+rng.Intn(40)),
			CommentCount: int64(rng.Intn(5_000)),
			Tags:         pickTags(rng),
		}
		if err := vidEnc.Encode(v); err != nil {
			fatal("write video: %v", err)
		}
	}

	fmt.Printf("Generated %d captions across %d videos in %s\n", totalCaptions, *numVideos, *outputDir)
}

func sentence(rng *rand.Rand) string {
	parts := []string{
		openers[rng.Intn(len(openers))],
		verbs[rng.Intn(len(verbs))],
		objects[rng.Intn(len(objects))],
	}
	if c := closers[rng.Intn(len(closers))]; c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, " ")
}

func pickTags(rng *rand.Rand) []string {
	n := 1 + rng.Intn(4)
	seen := map[string]bool{}
	tags := make([]string, 0, n)
	for len(tags) < n {
		tag := tagPool[rng.Intn(len(tagPool))]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
