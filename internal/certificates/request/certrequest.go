package request

import (
	"fmt"
	"strconv"

	"github.com/r2dtools/certman/internal/certerr"
	"github.com/r2dtools/certman/internal/dn"
	"golang.org/x/exp/slices"
)

const (
	Bits2048 = 2048
	Bits4096 = 4096

	DigestSha256 = "sha256"
	DigestSha512 = "sha512"

	DefaultBits   = Bits4096
	DefaultDays   = 3650
	DefaultDigest = DigestSha512
)

var (
	SupportedBits    = []int{Bits2048, Bits4096}
	SupportedDigests = []string{DigestSha256, DigestSha512}
)

const (
	reqSection        = "req"
	reqDnSection      = "req_dn"
	extensionsSection = "v3_ext"
	subjectSection    = "req_subject"
)

// IssueRequest describes a certificate to be issued by the signing engine.
type IssueRequest struct {
	DN          dn.DistinguishedName
	IsCA        bool
	DomainNames []string
	Bits        int
	Days        int
	Digest      string
}

// WithDefaults returns a copy of the request with unset numeric and digest values defaulted.
func (r IssueRequest) WithDefaults() IssueRequest {
	if r.Bits == 0 {
		r.Bits = DefaultBits
	}

	if r.Days == 0 {
		r.Days = DefaultDays
	}

	if r.Digest == "" {
		r.Digest = DefaultDigest
	}

	return r
}

func (r IssueRequest) Validate() error {
	if !slices.Contains(SupportedBits, r.Bits) {
		return fmt.Errorf("%w: unsupported key size %d, use 2048 or 4096", certerr.ErrConfiguration, r.Bits)
	}

	if !slices.Contains(SupportedDigests, r.Digest) {
		return fmt.Errorf("%w: unsupported hash algorithm '%s', use sha256 or sha512", certerr.ErrConfiguration, r.Digest)
	}

	if r.Days <= 0 {
		return fmt.Errorf("%w: validity period must be positive, got %d days", certerr.ErrConfiguration, r.Days)
	}

	if r.DN.IsEmpty() {
		return fmt.Errorf("%w: distinguished name is empty", certerr.ErrConfiguration)
	}

	return nil
}

// Config builds the signing engine configuration document for the request.
func (r IssueRequest) Config() *ConfigDocument {
	doc := NewConfigDocument()

	req := doc.Section(reqSection)
	req.Set("default_bits", strconv.Itoa(r.Bits))
	req.Set("default_md", r.Digest)
	req.Set("distinguished_name", reqDnSection)
	req.Set("encrypt_key", "no")
	req.Set("prompt", "no")
	req.Set("req_extensions", extensionsSection)
	req.Set("x509_extensions", extensionsSection)

	reqDn := doc.Section(reqDnSection)

	for _, item := range r.DN.Items() {
		reqDn.Set(item.Key, item.Value)
	}

	ext := doc.Section(extensionsSection)

	if r.IsCA {
		ext.Set("basicConstraints", "CA:TRUE")
		ext.Set("keyUsage", "keyCertSign, cRLSign")
	} else {
		ext.Set("basicConstraints", "CA:FALSE")
		ext.Set("extendedKeyUsage", "serverAuth, clientAuth")
	}

	if len(r.DomainNames) > 0 {
		ext.Set("subjectAltName", "@"+subjectSection)
		subject := doc.Section(subjectSection)

		for i, name := range r.DomainNames {
			subject.Set(fmt.Sprintf("DNS.%d", i+1), name)
		}
	}

	return doc
}

// ExtensionsSection is the section name holding X509v3 extensions in the generated document.
func ExtensionsSection() string {
	return extensionsSection
}
