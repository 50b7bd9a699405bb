package apperr

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/tbourn/go-search-server/internal/http/reply"
)

func TestStatusAndMessage_PerKind(t *testing.T) {
	cases := []struct {
		name   string
		err    *Error
		kind   Kind
		status int
		msg    string
	}{
		{"bad request", BadRequest("missing field: email"), KindBadRequest, 400, "missing field: email"},
		{"bad request f", BadRequestf("k must be <= %d", 50), KindBadRequest, 400, "k must be <= 50"},
		{"unauthorized", Unauthorized("invalid token"), KindUnauthorized, 401, "invalid token"},
		{"other leaf", Other(errors.New("invalid UUID")), KindOther, 400, "invalid UUID"},
		{"other chained", Other(fmt.Errorf("read body: %w", io.ErrUnexpectedEOF)), KindOther, 500, "error handling request: read body: unexpected EOF"},
		{"server", ServerError(errors.New("disk full")), KindServerError, 500, "error handling request: disk full"},
		{"server chained", ServerError(fmt.Errorf("open: %w", io.EOF)), KindServerError, 500, "error handling request: open: EOF"},
		{"serialization", Serialization(errors.New("unexpected end of JSON input")), KindSerialization, 422, "unexpected end of JSON input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Kind() != tc.kind {
				t.Fatalf("kind=%v want %v", tc.err.Kind(), tc.kind)
			}
			if got := tc.err.Status(); got != tc.status {
				t.Fatalf("status=%d want %d", got, tc.status)
			}
			if got := tc.err.Message(); got != tc.msg {
				t.Fatalf("message=%q want %q", got, tc.msg)
			}
			if _, ok := tc.err.Response(); ok {
				t.Fatalf("only Abort carries a response")
			}
		})
	}
}

func TestOther_JoinedCauseIsChained(t *testing.T) {
	e := Other(errors.Join(errors.New("a"), errors.New("b")))
	if e.Status() != http.StatusInternalServerError {
		t.Fatalf("joined cause should grade as 500, got %d", e.Status())
	}
}

func TestAbort_CarriesResponse(t *testing.T) {
	resp := reply.Empty(http.StatusNotModified).WithHeader("ETag", `W/"x"`)
	e := Abort(resp)

	if e.Kind() != KindAbort {
		t.Fatalf("kind=%v", e.Kind())
	}
	got, ok := e.Response()
	if !ok || got.Status != http.StatusNotModified || got.Header.Get("ETag") != `W/"x"` {
		t.Fatalf("unexpected embedded response: %+v ok=%v", got, ok)
	}
	if e.Status() != http.StatusNotModified {
		t.Fatalf("status=%d", e.Status())
	}
	if e.Message() != "" {
		t.Fatalf("abort has no message, got %q", e.Message())
	}
	if e.Error() != "request aborted with status 304" {
		t.Fatalf("Error()=%q", e.Error())
	}
}

func TestAbortWith_BuildsJSONBody(t *testing.T) {
	e := AbortWith(http.StatusConflict, "index already exists")
	got, ok := e.Response()
	if !ok || got.Status != http.StatusConflict {
		t.Fatalf("unexpected response: %+v ok=%v", got, ok)
	}
	want := `{"message":"index already exists","code":"conflict"}`
	if string(got.Body) != want {
		t.Fatalf("body=%s want %s", got.Body, want)
	}

	bad := AbortWith(42, "nope")
	if got, _ := bad.Response(); got.Status != 42 || len(got.Body) != 0 {
		t.Fatalf("invalid status should give empty response, got %+v", got)
	}
}

func TestNilCause_IsUnknownLeaf(t *testing.T) {
	for _, e := range []*Error{Other(nil), ServerError(nil), Serialization(nil)} {
		if e.Unwrap() == nil {
			t.Fatalf("%v: nil cause should be replaced", e.Kind())
		}
	}
	if got := Other(nil).Message(); got != "unknown error" {
		t.Fatalf("message=%q", got)
	}
	if got := Other(nil).Status(); got != http.StatusBadRequest {
		t.Fatalf("status=%d", got)
	}
}

func TestAs_WalksChain(t *testing.T) {
	base := BadRequest("nope")
	wrapped := fmt.Errorf("handler: %w", base)

	got, ok := As(wrapped)
	if !ok || got != base {
		t.Fatalf("As did not find wrapped *Error")
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("plain error must not be recognised")
	}
	if _, ok := As(nil); ok {
		t.Fatalf("nil must not be recognised")
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := ServerError(cause)
	if !errors.Is(e, cause) {
		t.Fatalf("errors.Is should reach the cause")
	}
	if e.Error() != "boom" {
		t.Fatalf("Error()=%q", e.Error())
	}
	if BadRequest("x").Unwrap() != nil {
		t.Fatalf("message kinds have no cause")
	}
}

func TestKindString(t *testing.T) {
	want := map[Kind]string{
		KindBadRequest:    "bad_request",
		KindUnauthorized:  "unauthorized",
		KindAbort:         "abort",
		KindOther:         "other",
		KindServerError:   "server_error",
		KindSerialization: "serialization",
		Kind(0):           "unknown",
	}
	for k, s := range want {
		if k.String() != s {
			t.Fatalf("Kind(%d).String()=%q want %q", k, k.String(), s)
		}
	}
}
