package subdomains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetInsertionOrder(t *testing.T) {
	s := NewSet("b", "a", "b", "c", "a")

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"b", "a", "c"}, s.Values())
}

func TestSetAdd(t *testing.T) {
	var s Set

	assert.True(t, s.Add("www.example.com"))
	assert.False(t, s.Add("www.example.com"))
	assert.True(t, s.Add("WWW.example.com"), "comparison is exact")
	assert.True(t, s.Contains("WWW.example.com"))
	assert.False(t, s.Contains("mail.example.com"))
}

func TestSetAddAllCountsNew(t *testing.T) {
	s := NewSet("a")

	assert.Equal(t, 2, s.AddAll([]string{"a", "b", "c", "b"}))
	assert.Equal(t, 3, s.Len())
}

func TestSetValuesIsCopy(t *testing.T) {
	s := NewSet("a", "b")

	values := s.Values()
	values[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, s.Values())
}
