package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, detailsOK: true},
		{code: CodeConflict, status: http.StatusConflict, detailsOK: true},
		{code: CodeStateConflict, status: http.StatusConflict, retryable: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	withDetails := base.WithDetails(map[string]string{"field": "foo"})
	if withDetails.Details() == nil {
		t.Fatal("expected details to be attached")
	}

	cause := fmt.Errorf("db down")
	wrapped := Wrap(CodeDependency, cause, "price lookup failed")
	if wrapped.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", wrapped.Code())
	}
	if !stdErrors.Is(wrapped, cause) {
		t.Fatal("expected wrapped error to unwrap to cause")
	}

	if got := Wrap(CodeInternal, nil, "no cause"); got.Unwrap() != nil {
		t.Fatal("wrapping nil should leave no cause")
	}
}

func TestAsRecoversTypedError(t *testing.T) {
	typed := New(CodeStateConflict, "cart not ready")
	chained := fmt.Errorf("handler: %w", typed)

	recovered := As(chained)
	if recovered == nil {
		t.Fatal("expected typed error to be recovered")
	}
	if recovered.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", recovered.Code())
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors should not convert")
	}
	if As(nil) != nil {
		t.Fatal("nil should not convert")
	}
}
