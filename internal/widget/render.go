package widget

import (
	"html"
	"strings"
)

// Role identifies who a transcript entry belongs to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Entry is one rendered transcript item.
type Entry struct {
	Role Role
	// HTML is safe to insert as markup: the text is escaped and the only
	// markup it contains is <br> for line breaks.
	HTML  string
	Error bool
}

var newlines = strings.NewReplacer("\r\n", "<br>", "\n", "<br>")

// RenderContent escapes text for insertion into the transcript and turns
// newlines into line breaks.
func RenderContent(text string) string {
	return newlines.Replace(html.EscapeString(text))
}

// Class returns the CSS class list used for an entry.
func (e Entry) Class() string {
	c := "message " + string(e.Role) + "-message"
	if e.Error {
		c += " error-message"
	}
	return c
}
