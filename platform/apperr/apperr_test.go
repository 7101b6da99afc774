package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Forbidden("x"), http.StatusForbidden},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Internal("x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("kind %s: expected %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("lead no encontrado").WithCode("LEAD_NOT_FOUND")
	wrapped := fmt.Errorf("update stage: %w", base)

	if !Is(wrapped, KindNotFound) {
		t.Fatalf("expected wrapped error to keep KindNotFound")
	}
	if GetCode(wrapped) != "LEAD_NOT_FOUND" {
		t.Fatalf("expected code LEAD_NOT_FOUND, got %q", GetCode(wrapped))
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected plain error to be KindUnknown")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(KindInternal, "error de base de datos", errors.New("conn refused")).WithOp("leads.Get")
	want := "leads.Get: error de base de datos: conn refused"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
