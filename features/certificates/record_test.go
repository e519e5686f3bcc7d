package certificates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecords(t *testing.T) {
	body := `[
		{"id": 1, "issuer_name": "C=US, O=Let's Encrypt", "common_name": "www.example.com", "name_value": "www.example.com\nexample.com"},
		{"id": 2, "commonName": "mail.example.com"},
		{"id": 3, "name_value": "*.example.com\n\napi.example.com\n"},
		{"id": 4, "common_name": null, "name_value": null}
	]`

	records, err := DecodeRecords(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, []string{"www.example.com", "www.example.com", "example.com"}, records[0].Hostnames())
	assert.Equal(t, []string{"mail.example.com"}, records[1].Hostnames())
	assert.Equal(t, []string{"*.example.com", "api.example.com"}, records[2].Hostnames())
	assert.Empty(t, records[3].Hostnames())
}

func TestDecodeRecordsEmptyArray(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeRecordsMalformed(t *testing.T) {
	for _, body := range []string{``, `<html>busy</html>`, `{"id": 1}`, `[{"id": 1}`} {
		_, err := DecodeRecords(strings.NewReader(body))
		assert.ErrorIs(t, err, ErrDecodeRecords, "body %q", body)
	}
}

func TestHostnamesKeepsRawValues(t *testing.T) {
	cn := " WWW.Example.com."
	nv := "A.example.com\nb.example.com "
	r := Record{CommonName: &cn, NameValue: &nv}

	assert.Equal(t, []string{" WWW.Example.com.", "A.example.com", "b.example.com "}, r.Hostnames())
}
