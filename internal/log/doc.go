// Package log provides logging for lodprobe, built on top of the
// standard slog package.
//
// Fragment sampling logs are dominated by IRIs and SPARQL queries, and
// both can be arbitrarily long. The TrimHandler truncates oversized
// string attribute values before delegating to the underlying handler,
// keeping log lines readable without losing the identifying prefix of
// a URL or query.
//
// # Usage
//
//	logger := log.NewTrimLogger(os.Stderr, true) // verbose=true
//	logger.Info("fetching page",
//	    "url", pageURL, // very long URLs are shortened
//	)
//	slog.SetDefault(logger)
package log
