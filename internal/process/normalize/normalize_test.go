package normalize

import "testing"

func TestCleanPipeline(t *testing.T) {
	n := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase",
			input: "This Video Is GREAT",
			want:  "this video is great",
		},
		{
			name:  "strips urls",
			input: "watch this https://example.com/x?y=1 and www.example.com too",
			want:  "watch this and too",
		},
		{
			name:  "strips mentions and hashtags",
			input: "@someone this #trending video",
			want:  "this video",
		},
		{
			name:  "strips emoji",
			input: "love it \U0001F600\U0001F525 so much ❤️",
			want:  "love it so much",
		},
		{
			name:  "collapses character runs",
			input: "soooo goooood!!!!",
			want:  "soo good",
		},
		{
			name:  "replaces slang tokens",
			input: "thx u gud video",
			want:  "thanks you good video",
		},
		{
			name:  "slang misses punctuation-attached tokens",
			input: "thx u, friend",
			want:  "thanks u friend",
		},
		{
			name:  "slang only on whole tokens",
			input: "urgent your",
			want:  "urgent your",
		},
		{
			name:  "drops digits and punctuation",
			input: "top 10 video!!! (really)",
			want:  "top video really",
		},
		{
			name:  "collapses whitespace",
			input: "a   lot\t of \n space",
			want:  "a lot of space",
		},
		{
			name:  "indonesian slang",
			input: "gk suka bgt sama yg ini",
			want:  "tidak suka banget sama yang ini",
		},
		{
			name:  "everything stripped",
			input: "@user https://example.com \U0001F600 123 !!!",
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	n := New()

	inputs := []string{
		"This Video Is GREAT!!! soooo good \U0001F600",
		"thx gk suka bgt @someone https://example.com",
		"plain already clean text",
	}

	for _, input := range inputs {
		once := n.Clean(input)
		twice := n.Clean(once)

		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestCollapseRepeats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"aaa", "aa"},
		{"aa", "aa"},
		{"baaaad", "baad"},
		{"!!!", "!"},
		{"??", "?"},
		{"...", "."},
		{"wow!!", "wow!"},
		{"1111", "11"},
	}

	for _, tt := range tests {
		if got := collapseRepeats(tt.input); got != tt.want {
			t.Errorf("collapseRepeats(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewWithSlang(t *testing.T) {
	n := NewWithSlang(map[string]string{"brb": "be right back"})

	if got := n.Clean("brb everyone"); got != "be right back everyone" {
		t.Errorf("unexpected result: %q", got)
	}
}
