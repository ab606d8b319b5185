package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTemplate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"plain text", "just some plain text", false},
		{"single braces", "{ not a template }", false},
		{"interpolation", "Hello {{ name }}!", true},
		{"no spaces", "Hello {{name}}!", true},
		{"block tag", "{% for item in items %}x{% endfor %}", true},
		{"if tag", "{% if done %}done{% endif %}", true},
		{"empty", "", false},
		{"unclosed braces", "hello {{ name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTemplate(tt.content); got != tt.want {
				t.Errorf("IsTemplate(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "simple interpolations",
			content: "Hello {{ name }}, welcome to {{ place }}!",
			want:    []string{"name", "place"},
		},
		{
			name:    "duplicates collapse",
			content: "{{ name }} and {{ name }} again",
			want:    []string{"name"},
		},
		{
			name:    "with filter",
			content: "{{ name | upper }}",
			want:    []string{"name"},
		},
		{
			name:    "for loop captures iterable not loop var",
			content: "{% for item in items %}{{ item }}{% endfor %}",
			want:    []string{"items"},
		},
		{
			name:    "if condition",
			content: "{% if show_details %}details{% endif %}",
			want:    []string{"show_details"},
		},
		{
			name:    "loop builtin excluded",
			content: "{% for x in things %}{{ loop.index }}{% endfor %}",
			want:    []string{"things"},
		},
		{
			name:    "literal keywords excluded",
			content: "{% if true %}{{ none }}{% endif %}{% if False %}x{% endif %}",
			want:    []string{},
		},
		{
			name:    "sorted output",
			content: "{{ zebra }} {{ alpha }} {{ mango }}",
			want:    []string{"alpha", "mango", "zebra"},
		},
		{
			name:    "not a template",
			content: "plain text",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVariables(tt.content))
		})
	}
}

func TestDeriveMetadata(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	t.Run("auto-detects template and extracts variables", func(t *testing.T) {
		isTemplate, vars := DeriveMetadata("Hello {{ name }}!", nil, nil)
		assert.True(t, isTemplate)
		assert.Equal(t, map[string]VarSpec{
			"name": {Type: "string", Required: true},
		}, vars)
	})

	t.Run("plain content", func(t *testing.T) {
		isTemplate, vars := DeriveMetadata("plain text", nil, nil)
		assert.False(t, isTemplate)
		assert.Nil(t, vars)
	})

	t.Run("explicit flag wins over detection", func(t *testing.T) {
		isTemplate, _ := DeriveMetadata("Hello {{ name }}!", boolPtr(false), nil)
		assert.False(t, isTemplate)

		isTemplate, vars := DeriveMetadata("plain text", boolPtr(true), nil)
		assert.True(t, isTemplate)
		assert.Empty(t, vars)
	})

	t.Run("explicit variable specs win over extraction", func(t *testing.T) {
		explicit := map[string]VarSpec{
			"name": {Type: "string", Required: false, Default: "world"},
		}
		isTemplate, vars := DeriveMetadata("Hello {{ name }} in {{ place }}!", nil, explicit)
		assert.True(t, isTemplate)
		assert.Equal(t, explicit, vars)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		valid    bool
		contains string
	}{
		{"plain text", "no markup at all", true, ""},
		{"well formed", "Hello {{ name }}! {% if x %}yes{% else %}no{% endif %}", true, ""},
		{"nested loop", "{% for a in outer %}{% for b in inner %}{{ b }}{% endfor %}{% endfor %}", true, ""},
		{"unclosed interpolation", "Hello {{ name", false, "expected '}}'"},
		{"unclosed for", "{% for item in items %}{{ item }}", false, "expected 'endfor'"},
		{"stray endif", "text {% endif %}", false, "unexpected 'endif'"},
		{"unknown tag", "{% while x %}{% endwhile %}", false, "unknown tag 'while'"},
		{"bad for shape", "{% for in items %}{% endfor %}", false, "expected 'for <name> in <iterable>'"},
		{"unknown filter", "{{ name | explode }}", false, "no filter named 'explode'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := Validate(tt.content)
			assert.Equal(t, tt.valid, valid)
			if tt.contains != "" {
				assert.Contains(t, msg, tt.contains)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestValidateReportsLine(t *testing.T) {
	content := "line one\nline two\n{% for x in %}\n"
	valid, msg := Validate(content)
	assert.False(t, valid)
	assert.Contains(t, msg, "Syntax error at line 3")
}
