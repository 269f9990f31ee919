package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestRedactor_URL(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "token in query",
			in:   "https://edith.example.com/api/sns/web/v2/comment/page?note_id=n1&xsec_token=abc&cursor=",
			want: "https://edith.example.com/api/sns/web/v2/comment/page?note_id=n1&xsec_token=[REDACTED]&cursor=",
		},
		{
			name: "case insensitive name",
			in:   "https://example.com/a?Access_Token=zzz",
			want: "https://example.com/a?Access_Token=[REDACTED]",
		},
		{
			name: "no query",
			in:   "https://example.com/api/sns/web/v1/homefeed",
			want: "https://example.com/api/sns/web/v1/homefeed",
		},
		{
			name: "nothing sensitive",
			in:   "https://example.com/a?page=2&size=20",
			want: "https://example.com/a?page=2&size=20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.URL(tt.in))
		})
	}
}

func TestRedactor_JSONNested(t *testing.T) {
	r := New()
	body := `{"success":true,"data":{"items":[{"id":"n1","xsec_token":"secret-1","note_card":{"user":{"nickname":"Alice","token":"t2"}}}]},"cookie":null}`

	out := r.JSON(body)

	assert.Equal(t, Placeholder, gjson.Get(out, "data.items.0.xsec_token").String())
	assert.Equal(t, Placeholder, gjson.Get(out, "data.items.0.note_card.user.token").String())
	assert.Equal(t, "n1", gjson.Get(out, "data.items.0.id").String())
	assert.Equal(t, "Alice", gjson.Get(out, "data.items.0.note_card.user.nickname").String())
	assert.True(t, gjson.Get(out, "success").Bool())
	assert.Equal(t, gjson.Null, gjson.Get(out, "cookie").Type)
	assert.NotContains(t, out, "secret-1")
	assert.NotContains(t, out, "t2")
}

func TestRedactor_JSONObjectValueAndEmbeddedURL(t *testing.T) {
	r := New()
	body := `[{"authorization":{"scheme":"bearer","value":"abc"},"link":"https://example.com/n?xsec_token=leak&x=1"}]`

	out := r.JSON(body)

	assert.Equal(t, Placeholder, gjson.Get(out, "0.authorization").String())
	assert.Equal(t, "https://example.com/n?xsec_token=[REDACTED]&x=1", gjson.Get(out, "0.link").String())
}

func TestRedactor_JSONDottedKey(t *testing.T) {
	r := New("a.b")
	out := r.JSON(`{"a.b":"hide","a":{"b":"keep"}}`)

	assert.Equal(t, Placeholder, gjson.Get(out, `a\.b`).String())
	assert.Equal(t, "keep", gjson.Get(out, "a.b").String())
}

func TestRedactor_JSONRepeatedKeys(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "same key twice",
			body: `{"token":"S1","token":"S2"}`,
			want: `{"token":"[REDACTED]","token":"[REDACTED]"}`,
		},
		{
			name: "repeated inside nested object",
			body: `{"data":{"a1":"x","id":"n1","a1":"y"}}`,
			want: `{"data":{"a1":"[REDACTED]","id":"n1","a1":"[REDACTED]"}}`,
		},
		{
			name: "leading whitespace and mixed value types",
			body: "  \n{\"cookie\":\"c\",\"cookie\":{\"k\":1}}",
			want: "  \n{\"cookie\":\"[REDACTED]\",\"cookie\":\"[REDACTED]\"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Body(tt.body))
		})
	}
}

func TestRedactor_JSONTopLevelString(t *testing.T) {
	out := New().JSON(`"web_session=abc; theme=dark"`)
	assert.Equal(t, "web_session=[REDACTED]; theme=dark", gjson.Parse(out).String())
	assert.NotContains(t, out, "abc")
}

func TestRedactor_TextFallback(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cookie header", "web_session=abc123; a1=xyz; theme=dark", "web_session=[REDACTED]; a1=[REDACTED]; theme=dark"},
		{"truncated json", `{"data":{"token":"abc","name":"x"`, `{"data":{"token":"[REDACTED]","name":"x"`},
		{"key suffix is not a match", "data1=keep&xa1=keep", "data1=keep&xa1=keep"},
		{"header style", "X-S: sig123", "X-S: [REDACTED]"},
		{"plain text", "nothing to hide", "nothing to hide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Text(tt.in))
		})
	}
}

func TestRedactor_LongestKeyWins(t *testing.T) {
	r := New("token", "xsec_token")
	assert.Equal(t, "xsec_token=[REDACTED]", r.Text("xsec_token=abc"))
}

func TestRedactor_BodyDoesNotTouchInput(t *testing.T) {
	r := New()
	body := `{"xsec_token":"keep-me-in-storage"}`

	masked := r.Body(body)

	assert.Contains(t, body, "keep-me-in-storage")
	assert.NotContains(t, masked, "keep-me-in-storage")
	assert.Empty(t, r.Body(""))
}

func TestRedactor_Preview(t *testing.T) {
	r := New()
	body := `{"token":"abc","text":"` + strings.Repeat("字", 50) + `"}`

	preview := r.Preview(body, 40)
	assert.True(t, strings.HasSuffix(preview, "...(truncated)"))
	assert.NotContains(t, preview, "abc")
	assert.True(t, len(preview) <= 40+len("...(truncated)"))

	assert.Equal(t, r.Body(body), r.Preview(body, 0))
}

func TestRedactor_CustomKeys(t *testing.T) {
	r := New("session_id", " ", "SESSION_ID")

	assert.True(t, r.IsSensitive("Session_Id"))
	assert.False(t, r.IsSensitive("xsec_token"))
	assert.Equal(t, "https://example.com/?session_id=[REDACTED]&xsec_token=t", r.URL("https://example.com/?session_id=s&xsec_token=t"))
}
