package subdomains

type LookupInput struct {
	Domain string `query:"domain" validate:"required,fqdn"`
}
