// Package remote implements driven.RemoteStore over the SSP backend's HTTP API.
//
// Requests carry a bearer token through golang.org/x/oauth2 and are paced
// by a token bucket from golang.org/x/time/rate. Non-2xx responses become
// *APIError, which satisfies domain.StatusError.
package remote
