package cli

import (
	"bytes"
	"testing"

	"github.com/r2dtools/certman/internal/certerr"
	"github.com/r2dtools/certman/internal/certificates/request"
	"github.com/r2dtools/certman/internal/dn"
	"github.com/r2dtools/certman/internal/dto"
	"github.com/stretchr/testify/assert"
)

func TestBuildCertRequest(t *testing.T) {
	flags := getRequestFlags()
	flags.organizationUnits = []string{"Web", "Ops"}

	issueRequest := flags.build("www", false, nil, dn.DistinguishedName{Country: "DE", Organization: "Example"})

	assert.Equal(t, "www", issueRequest.DN.CommonName)
	assert.Equal(t, "DE", issueRequest.DN.Country)
	assert.Equal(t, "Example", issueRequest.DN.Organization)
	assert.Equal(t, []string{"Web", "Ops"}, issueRequest.DN.OrganizationUnits)
	assert.Equal(t, []string{"www"}, issueRequest.DomainNames)
	assert.False(t, issueRequest.IsCA)
	assert.Equal(t, request.DefaultBits, issueRequest.Bits)
}

func TestBuildCertRequestWithNames(t *testing.T) {
	flags := getRequestFlags()
	flags.commonName = "example.com"
	flags.organization = "Other"

	issueRequest := flags.build("www", false, []string{"example.com", "www.example.com"}, dn.DistinguishedName{Organization: "Example"})

	assert.Equal(t, "example.com", issueRequest.DN.CommonName)
	assert.Equal(t, "Other", issueRequest.DN.Organization)
	assert.Equal(t, []string{"example.com", "www.example.com"}, issueRequest.DomainNames)
}

func TestBuildCARequest(t *testing.T) {
	issueRequest := getRequestFlags().build("root", true, []string{"ignored"}, dn.DistinguishedName{})

	assert.True(t, issueRequest.IsCA)
	assert.Nil(t, issueRequest.DomainNames)
	assert.Equal(t, "root", issueRequest.DN.CommonName)
}

func TestValidateRequestFlags(t *testing.T) {
	flags := getRequestFlags()
	assert.Nil(t, flags.validate())

	flags.bits = 1024
	assert.ErrorIs(t, flags.validate(), certerr.ErrConfiguration)

	flags = getRequestFlags()
	flags.hash = "md5"
	assert.ErrorIs(t, flags.validate(), certerr.ErrConfiguration)

	flags = getRequestFlags()
	flags.days = 0
	assert.ErrorIs(t, flags.validate(), certerr.ErrConfiguration)
}

func TestCreateIdentity(t *testing.T) {
	assert.Equal(t, "CA certificate root", createIdentity("root", "", true).Description())
	assert.Equal(t, "CA certificate sub", createIdentity("sub", "root", true).Description())
	assert.Equal(t, "certificate www signed by CA root", createIdentity("www", "root", false).Description())
	assert.Equal(t, "self-signed certificate www", createIdentity("www", "", false).Description())
}

func TestPrintCertificates(t *testing.T) {
	certs := []*dto.StoredCertificate{
		{Name: "root", IsCA: true, CertPath: "/store/root.pem", Children: []*dto.StoredCertificate{
			{Name: "www", CertPath: "/store/root.d/www.pem"},
		}},
		{Name: "local", CertPath: "/store/+SELF_SIGNED.d/local.pem"},
	}
	var buf bytes.Buffer

	printCertificates(&buf, certs, false)
	assert.Equal(t, "root (CA)\n  www\nlocal (self-signed)\n", buf.String())

	buf.Reset()
	printCertificates(&buf, certs, true)
	assert.Equal(t, "root (CA)\t/store/root.pem\n  www\t/store/root.d/www.pem\nlocal (self-signed)\t/store/+SELF_SIGNED.d/local.pem\n", buf.String())
}

func getRequestFlags() *requestFlags {
	return &requestFlags{
		bits: request.DefaultBits,
		hash: request.DefaultDigest,
		days: request.DefaultDays,
	}
}
