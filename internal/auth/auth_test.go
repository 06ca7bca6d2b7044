package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func introspectStub(t *testing.T, handler http.HandlerFunc) *TokenVerifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTokenVerifier(TokenVerifierConfig{IntrospectURL: srv.URL})
}

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/items/ai", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestTokenVerifier(t *testing.T) {
	t.Run("active token resolves to subject", func(t *testing.T) {
		v := introspectStub(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer good-token" {
				t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"active": true, "sub": "user-42"}`))
		})

		userID, err := v.Verify(context.Background(), requestWithToken("good-token"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if userID != "user-42" {
			t.Errorf("userID = %q, want user-42", userID)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		v := introspectStub(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("introspection should not be called without a token")
		})

		_, err := v.Verify(context.Background(), requestWithToken(""))
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("err = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("inactive token", func(t *testing.T) {
		v := introspectStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"active": false}`))
		})

		_, err := v.Verify(context.Background(), requestWithToken("stale-token"))
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("err = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("provider rejects token", func(t *testing.T) {
		v := introspectStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := v.Verify(context.Background(), requestWithToken("bad-token"))
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("err = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("provider outage is not unauthenticated", func(t *testing.T) {
		v := introspectStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := v.Verify(context.Background(), requestWithToken("any-token"))
		if err == nil || errors.Is(err, ErrUnauthenticated) {
			t.Errorf("err = %v, want a non-auth failure", err)
		}
	})
}

func TestStaticVerifier(t *testing.T) {
	v := &StaticVerifier{Tokens: map[string]string{"dev-token": "dev-user"}}

	userID, err := v.Verify(context.Background(), requestWithToken("dev-token"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "dev-user" {
		t.Errorf("userID = %q, want dev-user", userID)
	}

	if _, err := v.Verify(context.Background(), requestWithToken("other")); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}
