package subdomains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	f := NewFilter("example.com")

	tests := []struct {
		host string
		want bool
	}{
		{"sub.example.com", true},
		{"a.b.example.com", true},
		{"x-1.example.com", true},
		{"SUB.EXAMPLE.COM", true},
		{"Mail.Example.Com", true},
		{"example.com", false},
		{"*.example.com", false},
		{"*.sub.example.com", false},
		{"badexample.com", false},
		{"sub.example.com.evil.net", false},
		{"sub.example.org", false},
		{"sub_x.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.host))
		})
	}
}

func TestFilterDomainIsLiteral(t *testing.T) {
	f := NewFilter("example.com")

	// an unescaped dot would let any character stand in for it
	assert.False(t, f.Match("sub.exampleXcom"))
	assert.Equal(t, "example.com", f.Domain())
}

func TestFilterDomainCaseInsensitive(t *testing.T) {
	f := NewFilter("Example.COM")

	assert.True(t, f.Match("www.example.com"))
	assert.False(t, f.Match("example.com"))
}

func TestFilterApplyKeepsOrder(t *testing.T) {
	hosts := []string{
		"b.example.com",
		"example.com",
		"*.example.com",
		"a.example.com",
		"other.net",
		"b.example.com",
	}

	got := FilterSubdomains(hosts, "example.com")
	assert.Equal(t, []string{"b.example.com", "a.example.com", "b.example.com"}, got)
}

func TestFilterApplyEmpty(t *testing.T) {
	got := NewFilter("example.com").Apply(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
