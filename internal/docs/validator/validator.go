// Package validator checks documentation entries before they are admitted to
// the search index. It enforces required fields and length constraints and
// returns per-field error details.
package validator

import (
	"fmt"
	"strings"

	"github.com/nimbusdocs/docsearch/internal/docs"
)

const (
	maxIDLength      = 255
	maxTitleLength   = 1024
	maxContentLength = 1048576
	maxKeywords      = 64
	maxKeywordLength = 255
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateEntry checks that an entry carries the fields the index requires.
// A missing ID or title is rejected here so the builder never registers an
// empty token or an unaddressable entry.
func ValidateEntry(e *docs.SearchEntry) error {
	errs := make(map[string]string)

	id := strings.TrimSpace(e.ID)
	if id == "" {
		errs["id"] = "id is required"
	} else if len(id) > maxIDLength {
		errs["id"] = fmt.Sprintf("id must be at most %d characters", maxIDLength)
	}
	title := strings.TrimSpace(e.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if len(e.Content) > maxContentLength {
		errs["content"] = fmt.Sprintf("content must be at most %d characters", maxContentLength)
	}
	if len(e.Keywords) > maxKeywords {
		errs["keywords"] = fmt.Sprintf("at most %d keywords are allowed", maxKeywords)
	} else {
		for i, kw := range e.Keywords {
			if len(kw) > maxKeywordLength {
				errs["keywords"] = fmt.Sprintf("keyword %d must be at most %d characters", i, maxKeywordLength)
				break
			}
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
