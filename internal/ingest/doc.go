// Package ingest consumes the catalog ingestion stream.
//
// The server answers a long-running import with a chunked text body of
// progress lines, optionally framed as "data: <message>". Parser turns
// chunks into messages; Runner owns the request, enforces that only one
// stream runs at a time, publishes each message as an Event, and refreshes
// the catalog once when the stream ends cleanly.
//
// Nothing is retried. A non-2xx status or a read error terminates the stream
// with that error as the final message; progress already shown stays shown.
package ingest
