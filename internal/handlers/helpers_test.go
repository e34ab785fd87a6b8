package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/notifications"
)

type testValidator struct {
	v *validator.Validate
}

func (tv testValidator) Validate(i any) error {
	return tv.v.Struct(i)
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	v := validator.New()
	for tag, fn := range Validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			t.Fatalf("register %s: %v", tag, err)
		}
	}

	e := echo.New()
	e.Validator = testValidator{v: v}
	return e
}

// newContext создает контекст запроса; userID == uuid.Nil означает анонимный запрос.
func newContext(e *echo.Echo, method, target, body string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != uuid.Nil {
		c.Set(auth.ContextUserIDKey, userID)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

type recordedNotification struct {
	userID    uuid.UUID
	eventType notifications.EventType
	data      any
}

type fakeNotifier struct {
	events []recordedNotification
}

func (f *fakeNotifier) Notify(userID uuid.UUID, eventType notifications.EventType, data any) {
	f.events = append(f.events, recordedNotification{userID: userID, eventType: eventType, data: data})
}

