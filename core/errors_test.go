package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorTaxonomyPredicates(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		predicate func(error) bool
		status    int
	}{
		{"auth failure", NewAuthenticationFailure("rejected", nil), IsAuthenticationFailure, http.StatusUnauthorized},
		{"conflict", NewConflictError("already exists", nil), IsConflict, http.StatusConflict},
		{"over limit", NewOverLimitError("quota exceeded", nil), IsOverLimit, http.StatusRequestEntityTooLarge},
		{"client error", NewClientError(http.StatusBadRequest, "bad flavor", nil), IsClientError, http.StatusBadRequest},
		{"transport failure", NewTransportFailure(errors.New("refused"), "connect", nil), IsTransportFailure, http.StatusBadGateway},
		{"decoding error", NewDecodingError(errors.New("eof"), "decode", nil), IsDecodingError, http.StatusBadGateway},
		{"config error", NewConfigError("auth_url", "required"), IsConfigError, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.predicate(tc.err) {
				t.Fatalf("predicate rejected its own error: %v", tc.err)
			}
			if got := StatusCode(tc.err); got != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, got)
			}
		})
	}
}

func TestPredicatesRejectOtherCategories(t *testing.T) {
	conflict := NewConflictError("conflict", nil)
	if IsAuthenticationFailure(conflict) || IsOverLimit(conflict) || IsTransportFailure(conflict) {
		t.Fatalf("conflict matched a foreign predicate")
	}
	if IsConflict(nil) {
		t.Fatalf("nil must not match")
	}
	if IsConflict(errors.New("plain")) {
		t.Fatalf("plain error must not match")
	}
}

func TestStatusCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewAuthenticationFailure("rejected", nil))
	if got := StatusCode(err); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 through wrap, got %d", got)
	}
	if !IsAuthenticationFailure(err) {
		t.Fatalf("expected predicate match through wrap")
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Fatalf("expected zero for plain error, got %d", got)
	}
}

func TestClientErrorDefaultsMessage(t *testing.T) {
	err := NewClientError(http.StatusInternalServerError, "  ", nil)
	if !strings.Contains(err.Error(), "Unknown error") {
		t.Fatalf("expected default message, got %v", err)
	}
}
