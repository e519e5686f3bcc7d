package web

import (
	"errors"

	"crtsubs/features/enumerator"
	"crtsubs/features/store"
)

var ErrNoEnumerator = errors.New("enumerator is required")

// Services are the domain dependencies the HTTP handlers call into.
type Services struct {
	Enumerator *enumerator.Enumerator
	Store      store.SubdomainRepository
}

// NewServices bundles the handlers' dependencies. repo may be nil, in which
// case the stored-subdomains route is not mapped.
func NewServices(enum *enumerator.Enumerator, repo store.SubdomainRepository) (*Services, error) {
	if enum == nil {
		return nil, ErrNoEnumerator
	}

	return &Services{
		Enumerator: enum,
		Store:      repo,
	}, nil
}
