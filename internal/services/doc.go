// Package services defines the [Catalog] interface for remote collection services and implements it for Discogs.
//
// # Catalog Interface
//
// The upload engine only sees [Catalog]. Each method receives the [models.Account] it acts for,
// so one client can serve concurrent uploads for different users.
//
// # Discogs Implementation
//
// [DiscogsService] talks to the Discogs REST API. Authentication uses a personal access token:
// [TokenSource] wraps it in an [oauth2.StaticTokenSource] and each call goes through an
// [oauth2.Transport], which sets "Authorization: Discogs token=<token>". Discogs also rejects
// requests without a User-Agent, set with [WithUserAgent].
//
// # Error Handling
//
//   - [APIError] : non-2xx status, carrying the "message" field of the response body
//   - [shared.ErrUnexpectedResponse] : a 2xx body that is missing fields the engine relies on
//   - transport failures are returned wrapped as "request failed: ..."
//
// Every call is timed and counted in the metrics package under its operation name.
package services
