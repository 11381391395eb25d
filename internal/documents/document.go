// Package documents implements the document domain for Schemata.
// Documents hold the plain text that classification schemes are run against.
package documents

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a registered text document.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	TextContent string    `json:"text_content"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new document.
type CreateCommand struct {
	Title       string `json:"title"`
	TextContent string `json:"text_content"`
}

// UpdateCommand changes the title, the text, or both. Nil fields are kept.
type UpdateCommand struct {
	Title       *string `json:"title,omitempty"`
	TextContent *string `json:"text_content,omitempty"`
}

// Validate trims the title and rejects empty replacements or an update that
// changes nothing.
func (c *UpdateCommand) Validate() error {
	if c.Title == nil && c.TextContent == nil {
		return ErrNoChanges
	}
	if c.Title != nil {
		title := strings.TrimSpace(*c.Title)
		if title == "" {
			return ErrInvalidDocument
		}
		c.Title = &title
	}
	if c.TextContent != nil && strings.TrimSpace(*c.TextContent) == "" {
		return ErrEmptyText
	}
	return nil
}

// Validate trims the command and rejects empty titles or text.
func (c *CreateCommand) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return ErrInvalidDocument
	}
	if strings.TrimSpace(c.TextContent) == "" {
		return ErrEmptyText
	}
	return nil
}
