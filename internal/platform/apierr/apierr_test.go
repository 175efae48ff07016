package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("upstream down")
	err := Internal("Failed to generate drawing instructions", cause)
	if err.Status != http.StatusInternalServerError {
		t.Fatalf("status=%d", err.Status)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not unwrapped")
	}
	if got := err.Error(); got != "Failed to generate drawing instructions: upstream down" {
		t.Fatalf("Error()=%q", got)
	}
	if got := BadRequest("Topic is required").Error(); got != "Topic is required" {
		t.Fatalf("Error()=%q", got)
	}
	if got := (&Error{Status: 418}).Error(); got != "api error (418)" {
		t.Fatalf("Error()=%q", got)
	}
}
