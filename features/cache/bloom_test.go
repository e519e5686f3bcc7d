package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pairs [][2]string

func (p pairs) IterateHostnames(ctx context.Context, fn func(domain, hostname string) error) error {
	for _, pair := range p {
		if err := fn(pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}

type failingLister struct{}

func (failingLister) IterateHostnames(context.Context, func(string, string) error) error {
	return errors.New("store down")
}

func TestBuildKnownHosts(t *testing.T) {
	lister := pairs{
		{"example.com", "www.example.com"},
		{"example.com", "mail.example.com"},
		{"example.org", "www.example.org"},
	}

	kh, err := BuildKnownHosts(context.Background(), lister, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, kh.Len())
	assert.True(t, kh.MaybeKnown("example.com", "www.example.com"))
	assert.True(t, kh.MaybeKnown("example.org", "www.example.org"))
}

func TestKnownHostsKeyIncludesDomain(t *testing.T) {
	kh := NewKnownHosts(0)
	kh.Add("example.com", "www.example.com")

	assert.True(t, kh.MaybeKnown("example.com", "www.example.com"))
	assert.False(t, kh.MaybeKnown("www.example.com", "example.com"))
}

func TestKnownHostsPopulateError(t *testing.T) {
	_, err := BuildKnownHosts(context.Background(), failingLister{}, 10)
	assert.Error(t, err)
}

func TestKnownHostsNil(t *testing.T) {
	var kh *KnownHosts
	assert.ErrorIs(t, kh.Populate(context.Background(), pairs{}), ErrBloomFilterNotInitialized)
}
