// Package server provides HTTP routing, middleware, and the upload endpoint served by "yday serve".
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Routes
//
//   - POST /api/upload-releases : [UploadHandler], runs one upload per request
//   - GET /health : liveness probe, always {"status":"ok"}
//   - GET /metrics : Prometheus exposition
//
// # Upload Responses
//
// The body is {"username", "token", "releases", "folder"?}. Release ids may be strings or numbers.
// Results are returned in request order. Status codes:
//
//   - 200 : every release has an outcome (individual failures are reported per release)
//   - 400 : missing username, token or releases, a blank release id, or malformed JSON
//   - 502 : the folder list or a collection page could not be fetched, or folder creation failed
//   - 503 : the server is shutting down; partial results are included
//   - 504 : the request deadline expired; partial results are included
//
// Every response to an upload that reached the engine carries an X-Run-ID header matching the run id in the logs.
//
// # Middleware
//
// [Recover], [Logging], metrics and [CORS] wrap every route. CORS answers OPTIONS preflight requests with 204.
package server
