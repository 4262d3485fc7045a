package cli

import (
	"fmt"

	"github.com/r2dtools/certman/internal/certerr"
	"github.com/r2dtools/certman/internal/certificates/request"
	"github.com/r2dtools/certman/internal/dn"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// requestFlags are shared by the ca and cert commands.
type requestFlags struct {
	commonName        string
	organizationUnits []string
	organization      string
	locality          string
	state             string
	country           string
	email             string
	bits              int
	hash              string
	days              int
	ca                string
}

func (f *requestFlags) register(cmd *cobra.Command, caUsage string) {
	flags := cmd.Flags()
	flags.StringVarP(&f.commonName, "common-name", "c", "", "set Common Name (CN) field of the Distinguished Name (DN), certificate name is used by default")
	flags.StringArrayVarP(&f.organizationUnits, "organization-unit", "U", nil, "set Organization Unit (OU) field of the DN, can be specified several times")
	flags.StringVarP(&f.organization, "organization", "O", "", "set Organization (O) field of the DN")
	flags.StringVarP(&f.locality, "locality", "L", "", "set Locality (L) field of the DN")
	flags.StringVarP(&f.state, "state", "S", "", "set State (ST) field of the DN")
	flags.StringVarP(&f.country, "country", "C", "", "set Country (C) field of the DN")
	flags.StringVarP(&f.email, "email", "E", "", "set emailAddress field of the DN")
	flags.IntVarP(&f.bits, "bits", "b", request.DefaultBits, "use key of N bits long, N = 2048 or 4096")
	flags.StringVarP(&f.hash, "hash", "H", request.DefaultDigest, "use specified hash algorithm, either sha256 or sha512")
	flags.IntVarP(&f.days, "days", "d", request.DefaultDays, "set certificate validity period in days")
	flags.StringVarP(&f.ca, "ca", "a", "", caUsage)
}

func (f *requestFlags) validate() error {
	if !slices.Contains(request.SupportedBits, f.bits) {
		return fmt.Errorf("%w: invalid key size %d", certerr.ErrConfiguration, f.bits)
	}

	if !slices.Contains(request.SupportedDigests, f.hash) {
		return fmt.Errorf("%w: invalid hash algorithm %s", certerr.ErrConfiguration, f.hash)
	}

	if f.days <= 0 {
		return fmt.Errorf("%w: invalid validity period %d", certerr.ErrConfiguration, f.days)
	}

	return nil
}

// build creates the issuance request. The common name defaults to the certificate
// name, absent DN fields are taken from the configured defaults.
func (f *requestFlags) build(basename string, isCA bool, domainNames []string, defaults dn.DistinguishedName) request.IssueRequest {
	commonName := f.commonName

	if commonName == "" {
		commonName = basename
	}

	distinguishedName := dn.DistinguishedName{
		Country:           f.country,
		State:             f.state,
		Locality:          f.locality,
		Organization:      f.organization,
		OrganizationUnits: f.organizationUnits,
		CommonName:        commonName,
		EmailAddress:      f.email,
	}

	if isCA {
		domainNames = nil
	} else if len(domainNames) == 0 {
		domainNames = []string{commonName}
	}

	return request.IssueRequest{
		DN:          distinguishedName.WithDefaults(defaults),
		IsCA:        isCA,
		DomainNames: domainNames,
		Bits:        f.bits,
		Days:        f.days,
		Digest:      f.hash,
	}
}
