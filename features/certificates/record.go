// Package certificates decodes the JSON records returned by the crt.sh search endpoint.
package certificates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrDecodeRecords = errors.New("failed to decode certificate records")

// Record is one element of the crt.sh JSON array. Only the hostname bearing
// fields are kept; nil means the field was absent or null.
type Record struct {
	ID         int64   `json:"id,omitempty"`
	IssuerName string  `json:"issuer_name,omitempty"`
	CommonName *string `json:"commonName,omitempty"`
	// The live service spells the field this way.
	CommonNameAlt *string `json:"common_name,omitempty"`
	NameValue     *string `json:"name_value,omitempty"`
	NotBefore     string  `json:"not_before,omitempty"`
	NotAfter      string  `json:"not_after,omitempty"`
}

// Hostnames returns the raw candidate hostnames carried by the record: the
// common name when present, then each non-empty line of name_value.
// Values are not trimmed or lowercased.
func (r Record) Hostnames() []string {
	var names []string

	if r.CommonName != nil {
		names = append(names, *r.CommonName)
	}
	if r.CommonNameAlt != nil {
		names = append(names, *r.CommonNameAlt)
	}

	if r.NameValue != nil {
		for _, line := range strings.Split(*r.NameValue, "\n") {
			if line == "" {
				continue
			}
			names = append(names, line)
		}
	}

	return names
}

// DecodeRecords reads a JSON array of records from data.
func DecodeRecords(data io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(data).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeRecords, err)
	}
	return records, nil
}
