package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrs.New("socket closed")
	err := Wrap(cause, ErrorCodeUnavailable, "fetch failed")

	if !stderrs.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if got := Root(err); got != cause {
		t.Fatalf("Root = %v, want %v", got, cause)
	}
	if err.Code() != ErrorCodeUnavailable {
		t.Fatalf("code = %d", err.Code())
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(nil, ErrorCodeDB, "nope") != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
	if Wrapf(nil, ErrorCodeDB, "nope %d", 1) != nil {
		t.Fatalf("Wrapf(nil) should be nil")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeUpstream, http.StatusBadGateway},
		{ErrorCodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.code); got != tc.want {
			t.Errorf("HTTPStatusCode(%d) = %d, want %d", tc.code, got, tc.want)
		}
	}
	if HTTPStatus(nil) != http.StatusOK {
		t.Fatalf("nil error should map to 200")
	}
}

func TestWireFrom(t *testing.T) {
	w := WireFrom(Validation("page", "must be >= 1"))
	if w.Code != ErrorCodeValidation || w.Field != "page" {
		t.Fatalf("unexpected wire: %+v", w)
	}
	w = WireFrom(stderrs.New("plain"))
	if w.Code != ErrorCodeUnknown || w.Message != "plain" {
		t.Fatalf("unexpected wire for plain error: %+v", w)
	}
}
