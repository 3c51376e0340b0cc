package httperr

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func perform(t *testing.T, responder *Responder, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/boom", nil)

	responder.Internal(ctx, err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	return rec
}

func TestInternalWithDebugEnabled(t *testing.T) {
	responder := NewResponder(true, log.New(io.Discard, "", 0))

	body := perform(t, responder, errors.New("store unreachable")).Body.String()
	for _, key := range []string{`"sageAdvice"`, `"error"`, `"stack"`} {
		if !strings.Contains(body, key) {
			t.Fatalf("debug response missing %s: %s", key, body)
		}
	}
	if !strings.Contains(body, "store unreachable") {
		t.Fatalf("debug response missing error detail: %s", body)
	}
}

func TestInternalWithDebugDisabled(t *testing.T) {
	responder := NewResponder(false, log.New(io.Discard, "", 0))

	body := perform(t, responder, errors.New("store unreachable")).Body.String()
	if !strings.Contains(body, `"sageAdvice"`) {
		t.Fatalf("response missing sageAdvice: %s", body)
	}
	if strings.Contains(body, `"stack"`) {
		t.Fatalf("stack trace must be suppressed when debug is disabled: %s", body)
	}
	if strings.Contains(body, "store unreachable") {
		t.Fatalf("error detail must be suppressed when debug is disabled: %s", body)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	responder := NewResponder(true, log.New(io.Discard, "", 0))

	router := gin.New()
	router.Use(responder.Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sageAdvice") {
		t.Fatalf("panic response missing diagnostic payload: %s", rec.Body.String())
	}
}
