package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, e *echo.Echo, req *http.Request) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestErrorResponse(t *testing.T) {
	e := echo.New()
	e.GET("/app", func(c echo.Context) error {
		return ErrorResponse(c, Conflict("ERR_BUSY", "busy").WithError(errors.New("secret cause")))
	})
	e.GET("/plain", func(c echo.Context) error {
		return ErrorResponse(c, errors.New("db password wrong"))
	})

	code, env := serve(t, e, httptest.NewRequest(http.MethodGet, "/app", nil))
	if code != http.StatusConflict || env.Status != http.StatusConflict {
		t.Fatalf("status = %d/%d", code, env.Status)
	}
	if !strings.Contains(string(env.Data), "ERR_BUSY") || strings.Contains(string(env.Data), "secret") {
		t.Fatalf("unexpected body %s", env.Data)
	}

	code, env = serve(t, e, httptest.NewRequest(http.MethodGet, "/plain", nil))
	if code != http.StatusInternalServerError || strings.Contains(string(env.Data), "password") {
		t.Fatalf("unexpected %d %s", code, env.Data)
	}
}

func TestErrorHandlerUsesEnvelope(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = errorHandler

	code, env := serve(t, e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if code != http.StatusNotFound || env.Message != "Not Found" {
		t.Fatalf("unexpected %d %+v", code, env)
	}
	var errs []AppError
	if err := json.Unmarshal(env.Data, &errs); err != nil || len(errs) != 1 || errs[0].Code != "ERR_HTTP" {
		t.Fatalf("unexpected data %s", env.Data)
	}
}

func TestStatusOf(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), TooManyRequests("ERR_SLOW", "slow down"))
	if got := StatusOf(wrapped); got != http.StatusTooManyRequests {
		t.Fatalf("status = %d", got)
	}
	if got := StatusOf(errors.New("x")); got != http.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
}

type formRequest struct {
	Stock string `json:"stock" validate:"required,max=8"`
	Mode  string `json:"mode" default:"synthetic" validate:"oneof=synthetic omit"`
}

func TestBindAndValidate(t *testing.T) {
	e := echo.New()
	var got formRequest
	e.POST("/form", func(c echo.Context) error {
		got = formRequest{}
		if errs := BindAndValidate(c, &got); errs != nil {
			return BadRequestResponse(c, errs)
		}
		return SuccessResponse(c, got)
	})

	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return req
	}

	if code, _ := serve(t, e, post(`{"stock":"ITC"}`)); code != http.StatusOK || got.Mode != "synthetic" {
		t.Fatalf("expected defaults applied, got %d %+v", code, got)
	}

	code, env := serve(t, e, post(`{"stock":"TOOLONGNAME","mode":"real"}`))
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d", code)
	}
	var errs []ValidationError
	if err := json.Unmarshal(env.Data, &errs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 2 || errs[0].Field != "stock" || errs[0].Code != "ERR_MAX" || errs[1].Field != "mode" {
		t.Fatalf("unexpected errors %+v", errs)
	}
	if errs[0].Message != "stock must be at most 8 characters" {
		t.Fatalf("message = %q", errs[0].Message)
	}

	if code, env := serve(t, e, post(`{"stock":`)); code != http.StatusBadRequest || !strings.Contains(string(env.Data), "ERR_BIND") {
		t.Fatalf("malformed body: %d %s", code, env.Data)
	}
}
