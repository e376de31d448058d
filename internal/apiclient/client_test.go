package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"inkwell/internal/apierrors"
	"inkwell/internal/session/store"
	"inkwell/pkg/testutil"
)

type ClientSuite struct {
	suite.Suite
	creds *store.MemoryStore
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.creds = store.NewMemory()
}

func (s *ClientSuite) newClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := testutil.NewServer(handler)
	s.T().Cleanup(srv.Close)
	return New(srv.URL, s.creds), srv
}

func (s *ClientSuite) TestCredentialAttachment() {
	ctx := context.Background()

	s.Run("attaches the stored credential as a bearer header", func() {
		rec := testutil.NewRecordingHandler(testutil.StatusHandler(http.StatusOK, `{}`))
		client, _ := s.newClient(rec)

		s.Require().NoError(s.creds.Save(ctx, "tok-123"))
		s.Require().NoError(client.Get(ctx, "/posts/", nil))

		s.Require().Len(rec.Requests, 1)
		s.Equal("Bearer tok-123", rec.Requests[0].Header.Get("Authorization"))
		s.NotEmpty(rec.Requests[0].Header.Get("X-Request-ID"))
	})

	s.Run("sends unauthenticated when no credential is stored", func() {
		s.creds = store.NewMemory()
		rec := testutil.NewRecordingHandler(testutil.StatusHandler(http.StatusOK, `{}`))
		client, _ := s.newClient(rec)

		s.Require().NoError(client.Get(ctx, "/posts/", nil))

		s.Require().Len(rec.Requests, 1)
		s.Empty(rec.Requests[0].Header.Get("Authorization"))
	})

	s.Run("reads the latest committed credential on every request", func() {
		rec := testutil.NewRecordingHandler(testutil.StatusHandler(http.StatusOK, `{}`))
		client, _ := s.newClient(rec)

		s.Require().NoError(s.creds.Save(ctx, "tok-1"))
		s.Require().NoError(client.Get(ctx, "/posts/", nil))
		s.Require().NoError(s.creds.Save(ctx, "tok-2"))
		s.Require().NoError(client.Get(ctx, "/posts/", nil))

		s.Require().Len(rec.Requests, 2)
		s.Equal("Bearer tok-1", rec.Requests[0].Header.Get("Authorization"))
		s.Equal("Bearer tok-2", rec.Requests[1].Header.Get("Authorization"))
	})
}

func (s *ClientSuite) TestClassification() {
	ctx := context.Background()

	tests := []struct {
		name        string
		status      int
		body        string
		credential  string
		wantKind    apierrors.Kind
		wantMessage string
	}{
		{
			name:        "401 with credential is unauthorized with expiry message",
			status:      http.StatusUnauthorized,
			body:        `{"detail":"Could not validate credentials"}`,
			credential:  "tok-stale",
			wantKind:    apierrors.KindUnauthorized,
			wantMessage: apierrors.MsgSessionExpired,
		},
		{
			name:        "401 without credential asks for login",
			status:      http.StatusUnauthorized,
			body:        `{"detail":"Could not validate credentials"}`,
			wantKind:    apierrors.KindUnauthorized,
			wantMessage: apierrors.MsgLoginRequired,
		},
		{
			name:        "403 is forbidden",
			status:      http.StatusForbidden,
			body:        `{"detail":"Not authorized"}`,
			credential:  "tok-123",
			wantKind:    apierrors.KindForbidden,
			wantMessage: apierrors.MsgForbidden,
		},
		{
			name:        "404 is not found",
			status:      http.StatusNotFound,
			body:        `{"detail":"Post not found"}`,
			wantKind:    apierrors.KindNotFound,
			wantMessage: apierrors.MsgNotFound,
		},
		{
			name:        "500 is a server error",
			status:      http.StatusInternalServerError,
			body:        `{"detail":"boom"}`,
			wantKind:    apierrors.KindServerError,
			wantMessage: apierrors.MsgServerError,
		},
		{
			name:        "503 is a server error too",
			status:      http.StatusServiceUnavailable,
			body:        ``,
			wantKind:    apierrors.KindServerError,
			wantMessage: apierrors.MsgServerError,
		},
		{
			name:        "other status with detail surfaces it verbatim",
			status:      http.StatusBadRequest,
			body:        `{"detail":"Email already registered"}`,
			wantKind:    apierrors.KindValidation,
			wantMessage: "Email already registered",
		},
		{
			name:        "other status without detail is unknown",
			status:      http.StatusTeapot,
			body:        ``,
			wantKind:    apierrors.KindUnknown,
			wantMessage: apierrors.MsgUnknown,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.creds = store.NewMemory()
			if tc.credential != "" {
				s.Require().NoError(s.creds.Save(ctx, tc.credential))
			}
			client, _ := s.newClient(testutil.StatusHandler(tc.status, tc.body))

			err := client.Get(ctx, "/whatever", nil)
			s.Require().Error(err)
			s.Equal(tc.wantKind, apierrors.KindOf(err))
			s.Equal(tc.wantMessage, apierrors.MessageOf(err))
		})
	}

	s.Run("transport failure is a network error", func() {
		srv := testutil.NewServer(testutil.StatusHandler(http.StatusOK, `{}`))
		url := srv.URL
		srv.Close()

		client := New(url, store.NewMemory())
		err := client.Get(ctx, "/posts/", nil)
		s.Require().Error(err)
		s.Equal(apierrors.KindNetwork, apierrors.KindOf(err))
	})
}

func (s *ClientSuite) TestInvalidationSignal() {
	ctx := context.Background()

	s.Run("fires when a 401 arrives on an authenticated request", func() {
		client, _ := s.newClient(testutil.DetailHandler(http.StatusUnauthorized, "Could not validate credentials"))
		s.Require().NoError(s.creds.Save(ctx, "tok-stale"))

		fired := 0
		client.OnInvalidate(func() { fired++ })

		err := client.Get(ctx, "/users/me", nil)
		s.Require().Error(err)
		s.Equal(1, fired)
	})

	s.Run("does not fire without a credential attached", func() {
		s.creds = store.NewMemory()
		client, _ := s.newClient(testutil.DetailHandler(http.StatusUnauthorized, "Could not validate credentials"))

		fired := 0
		client.OnInvalidate(func() { fired++ })

		err := client.Get(ctx, "/users/me", nil)
		s.Require().Error(err)
		s.Zero(fired)
	})

	s.Run("does not fire for other failure kinds", func() {
		client, _ := s.newClient(testutil.DetailHandler(http.StatusForbidden, "Not authorized"))
		s.Require().NoError(s.creds.Save(ctx, "tok-123"))

		fired := 0
		client.OnInvalidate(func() { fired++ })

		err := client.Get(ctx, "/users/me", nil)
		s.Require().Error(err)
		s.Zero(fired)
	})
}

func (s *ClientSuite) TestDecoding() {
	ctx := context.Background()

	s.Run("decodes a success payload into out", func() {
		client, _ := s.newClient(testutil.StatusHandler(http.StatusOK, `{"id":"u1","email":"a@x.com"}`))

		var out struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		s.Require().NoError(client.Get(ctx, "/users/me", &out))
		s.Equal("u1", out.ID)
		s.Equal("a@x.com", out.Email)
	})

	s.Run("nil out discards the body", func() {
		client, _ := s.newClient(testutil.StatusHandler(http.StatusOK, `{"id":"u1"}`))
		s.Require().NoError(client.Get(ctx, "/users/me", nil))
	})

	s.Run("empty 204 body with out is fine", func() {
		client, _ := s.newClient(testutil.StatusHandler(http.StatusNoContent, ``))
		var out map[string]string
		s.Require().NoError(client.Delete(ctx, "/posts/p1"))
		s.Require().NoError(client.Get(ctx, "/posts/p1", &out))
	})

	s.Run("malformed success payload is an unknown error", func() {
		client, _ := s.newClient(testutil.StatusHandler(http.StatusOK, `{not json`))
		var out map[string]string
		err := client.Get(ctx, "/users/me", &out)
		s.Require().Error(err)
		s.Equal(apierrors.KindUnknown, apierrors.KindOf(err))
	})
}

func (s *ClientSuite) TestMetrics() {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	srv := testutil.NewServer(testutil.DetailHandler(http.StatusNotFound, "Post not found"))
	s.T().Cleanup(srv.Close)
	client := New(srv.URL, s.creds, WithMetrics(metrics))

	err := client.Get(ctx, "/posts/nope", nil)
	s.Require().Error(err)

	count := promtestutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, string(apierrors.KindNotFound)))
	s.Equal(1.0, count)
}
