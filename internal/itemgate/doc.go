// Package itemgate provides an HTTP client for the ItemGate catalog API.
//
// # Overview
//
// ItemGate serves a shared product catalog, per-user AI generations of
// marketing content for those products, and a handful of admin operations
// for bulk-ingesting catalog items. This package is the only place that
// knows about URLs, headers, and wire formats; everything above it works with
// the typed values defined in types.go.
//
// # Endpoints
//
//	GET  /sima-land/get_items                         ListCatalog
//	GET  /sima-land/get_items_sellers                 ListGenerated
//	POST /sima-land/ai_generate_desc_seller/{id}      Generate
//	POST /sima-land/search_item_to_word/{word}        SearchCatalog
//	POST /sima-land/search_generated_items/{word}     SearchGenerated
//	PUT  /sima-land/update_generation/{id}            SaveGeneration
//	GET  /sima-land/loading_words_db/{count}          OpenIngest (chunked text)
//	POST /excel/upload-items                          Import (multipart "file")
//	GET  /excel/export-items, /excel/backup-database  Download
//	GET  /sima-land/logs                              FetchLogs
//	POST /auth/login-json, GET /auth/me               Login, Me
//
// Every request carries a User-Agent, a fresh X-Request-ID, and, when the
// configured TokenSource has one, an "Authorization: Bearer" header.
//
// # Identifiers
//
// Catalog items come with two identifier fields, the numeric "id" and the
// external "id_item". ItemID decodes either JSON form, and CatalogItem.Key
// picks one canonical value while CatalogItem.Matches accepts both.
//
// # Errors
//
// All operations return *Error values classified by Kind:
//
//   - KindTransport: network failure, unexpected status, undecodable body
//   - KindAuth: the server answered 401; callers should drop the credential
//   - KindApplication: a 2xx payload that carries its own error field
//   - KindValidation: a precondition failed before any request was sent
//
// Use KindOf or IsAuth rather than matching on message text.
//
// # Timeouts
//
// JSON calls honour the timeout set with WithTimeout. The ingestion stream
// uses a separate http.Client without a timeout because the server keeps the
// body open for the whole import; cancel the context to stop it.
package itemgate
