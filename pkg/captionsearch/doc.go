// Package captionsearch is the public entry point for embedding the
// subseek caption search pipeline in another program.
//
// A [Client] binds the configured backend stores to the retrieval
// pipeline:
//
//	┌────────────────────────────────────────────────────────────┐
//	│                          Client                            │
//	│  ┌──────────────┐   ┌───────────────────────────────────┐  │
//	│  │ CaptionIndex │   │ Planner → Ranker → Fetcher →      │  │
//	│  │ (bleve / ES) │──▶│ Neighbors → Snippets              │  │
//	│  ├──────────────┤   │                                   │  │
//	│  │ VideoStore   │──▶│ metadata sorts + cache            │  │
//	│  │ (sqlite / ES)│   └───────────────────────────────────┘  │
//	│  └──────────────┘                                          │
//	└────────────────────────────────────────────────────────────┘
//
// # Usage
//
// Open a client from configuration, load content, search:
//
//	cfg := config.NewConfig()
//	client, err := captionsearch.Open(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	resp, err := client.Search(ctx, captionsearch.Request{
//	    Query: "hello world",
//	    Options: captionsearch.Options{
//	        Mode:   captionsearch.ModeWide,
//	        SortBy: captionsearch.SortByViews,
//	    },
//	})
//
// Each result carries the video id, the timestamp where the match is
// spoken, and a snippet with the matched span wrapped in highlight
// markers and padded with neighboring captions.
//
// # Thread Safety
//
// A Client is safe for concurrent use; requests share no mutable state.
package captionsearch
