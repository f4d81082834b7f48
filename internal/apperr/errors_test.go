package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/mind-engage/itembank/internal/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("invalid content_area %q", "s9"), http.StatusBadRequest},
		{apperr.NotFound("table %q does not exist", "items"), http.StatusNotFound},
		{apperr.IO(os.ErrNotExist, "excel file not found: %s", "x.xlsx"), http.StatusBadRequest},
		{apperr.Format(errors.New("zip: not a valid zip file"), "cannot parse sheet"), http.StatusBadRequest},
		{apperr.Store(errors.New("disk I/O error"), "query items"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := apperr.Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestWrappedKindSurvives(t *testing.T) {
	base := apperr.NotFound("column %q not found in %q", "foo", "items")
	wrapped := fmt.Errorf("rename: %w", base)
	if !apperr.Is(wrapped, apperr.KindNotFound) {
		t.Fatalf("kind lost through wrapping: %v", wrapped)
	}
	if apperr.Status(wrapped) != http.StatusNotFound {
		t.Fatalf("status = %d", apperr.Status(wrapped))
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	err := apperr.IO(os.ErrNotExist, "excel file not found: %s", "a.xlsx")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause not reachable: %v", err)
	}
	if err.Error() != "excel file not found: a.xlsx: "+os.ErrNotExist.Error() {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
