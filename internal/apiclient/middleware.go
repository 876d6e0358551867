package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	HeaderRequestID          = "X-Request-ID"
	HeaderSkipBrowserWarning = "ngrok-skip-browser-warning"
)

// TokenSource yields the stored bearer token, ok=false when signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, bool, error)
}

// Middleware decorates a round tripper. Chains are composed once in New.
type Middleware func(next http.RoundTripper) http.RoundTripper

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps base so that mws[0] sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// DefaultHeaders sets the JSON content type unless the caller chose one,
// and the tunnel interstitial bypass header.
func DefaultHeaders() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			r := req.Clone(req.Context())
			if r.Header.Get("Content-Type") == "" {
				r.Header.Set("Content-Type", "application/json")
			}
			r.Header.Set(HeaderSkipBrowserWarning, "true")
			return next.RoundTrip(r)
		})
	}
}

func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) != "" {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set(HeaderRequestID, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}

// BearerAuth attaches the stored token. Requests made while signed out
// pass through untouched.
func BearerAuth(tokens TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			token, ok, err := tokens.Token(req.Context())
			if err != nil {
				log.Warn().Err(err).Msg("failed to read stored token, sending request without it")
				return next.RoundTrip(req)
			}
			if !ok {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(r)
			return next.RoundTrip(r)
		})
	}
}

// Unauthorized calls onUnauthorized once for every 401 response. The
// response itself is returned unchanged so the caller still sees the
// failure.
func Unauthorized(onUnauthorized func(ctx context.Context)) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err == nil && resp.StatusCode == http.StatusUnauthorized && onUnauthorized != nil {
				onUnauthorized(req.Context())
			}
			return resp, err
		})
	}
}

func Logging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Str("request_id", req.Header.Get(HeaderRequestID)).
					Dur("elapsed", elapsed).
					Msg("api request failed")
				return resp, err
			}

			event := log.Debug()
			if resp.StatusCode >= 400 {
				event = log.Warn()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("request_id", req.Header.Get(HeaderRequestID)).
				Int("status", resp.StatusCode).
				Dur("elapsed", elapsed).
				Msg("api request")
			return resp, err
		})
	}
}
