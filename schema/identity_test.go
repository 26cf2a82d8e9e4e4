package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name  string
		key   AuthorKey
		user  string
		email string
		want  string
	}{
		{"name only", AuthorName, "Alice", "alice@example.com", "Alice"},
		{"email lowercased", AuthorEmail, "Alice", "Alice@Example.com", "alice@example.com"},
		{"email missing falls back to name", AuthorEmail, "Alice", "", "Alice"},
		{"name and email", AuthorNameEmail, "Alice", "alice@example.com", "Alice <alice@example.com>"},
		{"name and email trims", AuthorNameEmail, "  Bob ", " bob@example.com ", "Bob <bob@example.com>"},
		{"unknown key uses default", AuthorKey("other"), "Carol", "c@example.com", "Carol <c@example.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identity(tt.key, tt.user, tt.email))
		})
	}
}

func TestIdentityName(t *testing.T) {
	assert.Equal(t, "Alice", IdentityName("Alice <alice@example.com>"))
	assert.Equal(t, "Alice", IdentityName("Alice"))
	assert.Equal(t, "alice@example.com", IdentityName("alice@example.com"))
}

func TestAbbreviateName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"popcorn", "popcorn"},
		{"Samuel Huang", "Samuel H"},
		{"First Second Third", "First T"},
		{"Samuel Huang <sam@example.com>", "Samuel H"},

		{"`backtickname", "backtickname"},
		{"Ava (Billy) Cathy", "Ava C"},
		{"O'Neill John", "O'Neill J"},
		{"Anne-Marie Smith", "Anne-Marie S"},

		{"  Alice  ", "Alice"},
		{"John   Doe", "John D"},

		{"A. B. C.", "A C"},
		{"J. R. R. Tolkien", "J T"},

		{"*Security-Bot*", "Security-Bot"},
		{"[John Smith]", "John S"},
		{"user@example.com", "user@example.com"},

		{"dependabot[bot]", "dependabot[bot]"},
		{"dependabot [bot] <bot@example.com>", "dependabot [bot]"},

		{"张三", "张三"},
		{"Hans Müller", "Hans M"},
		{"José María", "José M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AbbreviateName(tt.name))
		})
	}
}
