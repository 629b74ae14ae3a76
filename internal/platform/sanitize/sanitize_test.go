package sanitize

import (
	"strings"
	"testing"
)

func TestComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "a perfectly normal comment",
			want:  "a perfectly normal comment",
		},
		{
			name:  "trims whitespace",
			input: "   padded   ",
			want:  "padded",
		},
		{
			name:  "whitespace only",
			input: " \t\n ",
			want:  "",
		},
		{
			name:  "strips html tags",
			input: "nice <b>video</b> <a href=\"x\">link</a>",
			want:  "nice video link",
		},
		{
			name:  "drops script bodies",
			input: "before <script>alert('x')</script> after",
			want:  "before after",
		},
		{
			name:  "drops style bodies",
			input: "before <style>p{color:red}</style> after",
			want:  "before after",
		},
		{
			name:  "removes event handlers",
			input: "text onclick= more",
			want:  "text more",
		},
		{
			name:  "removes null bytes",
			input: "a\x00b",
			want:  "ab",
		},
		{
			name:  "collapses inner whitespace",
			input: "too   many\t\tspaces",
			want:  "too many spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Comment(tt.input); got != tt.want {
				t.Errorf("Comment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCommentEscapesEntities(t *testing.T) {
	got := Comment("5 &lt; 6 & \"quotes\"")

	if strings.Contains(got, "<") {
		t.Errorf("expected angle brackets escaped, got %q", got)
	}

	if !strings.Contains(got, "&lt;") || !strings.Contains(got, "&amp;") {
		t.Errorf("expected escaped entities, got %q", got)
	}
}

func TestCommentLengthCap(t *testing.T) {
	long := strings.Repeat("a", MaxCommentLength+500)

	got := Comment(long)
	if len(got) != MaxCommentLength {
		t.Errorf("expected %d characters, got %d", MaxCommentLength, len(got))
	}
}

func TestField(t *testing.T) {
	if got := Field("  <i>Author</i> Name  ", 200); got != "Author Name" {
		t.Errorf("unexpected field value: %q", got)
	}

	if got := Field(strings.Repeat("x", 50), 10); len(got) != 10 {
		t.Errorf("expected field capped at 10, got %d", len(got))
	}
}
