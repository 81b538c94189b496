package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/devhub/internal/app/system/htmlsanitize"
)

func TestTextHTML_Empty(t *testing.T) {
	if got := htmlsanitize.TextHTML(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestTextHTML_PlainTextUnchanged(t *testing.T) {
	input := "Hello, World"
	if got := htmlsanitize.TextHTML(input); got != input {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestTextHTML_EscapesAngleBrackets(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"if a<b and c>d then swap", "if a&lt;b and c&gt;d then swap"},
		{"use <T any> generics", "use &lt;T any&gt; generics"},
		{"<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := htmlsanitize.TextHTML(tt.in); got != tt.want {
				t.Errorf("TextHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextHTML_LinksURLs(t *testing.T) {
	got := htmlsanitize.TextHTML("docs at https://go.dev/doc.")
	if !strings.Contains(got, `href="https://go.dev/doc"`) {
		t.Errorf("expected a link to https://go.dev/doc, got %q", got)
	}
	if !strings.Contains(got, "nofollow") {
		t.Errorf("expected rel=nofollow on links, got %q", got)
	}
	if !strings.HasSuffix(got, "</a>.") {
		t.Errorf("trailing punctuation should stay outside the link, got %q", got)
	}
}

func TestTextHTML_NoLinkForOtherSchemes(t *testing.T) {
	got := htmlsanitize.TextHTML("javascript:alert(1)")
	if strings.Contains(got, "<a") {
		t.Errorf("only http(s) URLs become links, got %q", got)
	}
}
