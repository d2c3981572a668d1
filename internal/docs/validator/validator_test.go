package validator_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nimbusdocs/docsearch/internal/docs"
	"github.com/nimbusdocs/docsearch/internal/docs/validator"
)

func validEntry() docs.SearchEntry {
	return docs.SearchEntry{
		ID:       "auth-guide",
		Title:    "Authentication Guide",
		Content:  "Learn how to authenticate.",
		Path:     "/docs/auth",
		Keywords: []string{"auth", "token"},
	}
}

func TestValidateEntryAccepts(t *testing.T) {
	e := validEntry()
	if err := validator.ValidateEntry(&e); err != nil {
		t.Errorf("valid entry rejected: %v", err)
	}
}

func TestValidateEntryRejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(e *docs.SearchEntry)
		wantField string
	}{
		{
			name:      "missing id",
			mutate:    func(e *docs.SearchEntry) { e.ID = "" },
			wantField: "id",
		},
		{
			name:      "whitespace id",
			mutate:    func(e *docs.SearchEntry) { e.ID = "   " },
			wantField: "id",
		},
		{
			name:      "oversized id",
			mutate:    func(e *docs.SearchEntry) { e.ID = strings.Repeat("x", 256) },
			wantField: "id",
		},
		{
			name:      "missing title",
			mutate:    func(e *docs.SearchEntry) { e.Title = "" },
			wantField: "title",
		},
		{
			name:      "oversized title",
			mutate:    func(e *docs.SearchEntry) { e.Title = strings.Repeat("t", 1025) },
			wantField: "title",
		},
		{
			name:      "oversized content",
			mutate:    func(e *docs.SearchEntry) { e.Content = strings.Repeat("c", 1048577) },
			wantField: "content",
		},
		{
			name: "too many keywords",
			mutate: func(e *docs.SearchEntry) {
				e.Keywords = make([]string, 65)
				for i := range e.Keywords {
					e.Keywords[i] = "kw"
				}
			},
			wantField: "keywords",
		},
		{
			name: "oversized keyword",
			mutate: func(e *docs.SearchEntry) {
				e.Keywords = []string{strings.Repeat("k", 256)}
			},
			wantField: "keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			err := validator.ValidateEntry(&e)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var vErr *validator.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if _, ok := vErr.Fields[tt.wantField]; !ok {
				t.Errorf("Fields = %v, want key %q", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestValidateEntryCollectsAllFields(t *testing.T) {
	e := docs.SearchEntry{}
	err := validator.ValidateEntry(&e)
	var vErr *validator.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	for _, field := range []string{"id", "title"} {
		if _, ok := vErr.Fields[field]; !ok {
			t.Errorf("Fields = %v, missing %q", vErr.Fields, field)
		}
	}
}
