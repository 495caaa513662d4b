// Package logtail reads the end of the client's own log file.
//
// Users without the admin role cannot fetch the server activity log, so the
// logs screen falls back to the local file written by the logging package.
//
// # Reading
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays at
// O(maxLines) however large the file grows. A missing file yields no lines
// and no error; the log may simply not exist yet.
//
//	lines, err := logtail.Read(cfg.LogPath, 400)
//
// # Formatting
//
// Each line is a zap JSON object. Parse pulls out ts, level and msg and
// keeps the remaining keys as string fields; Format renders them as
//
//	21:01:05 WARN  operation failed op=search tab=catalog
//
// Lines that are not JSON are shown verbatim. Tail combines both steps.
package logtail
