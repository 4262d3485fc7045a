package dto

import "github.com/r2dtools/certman/internal/dn"

// CertificateInfo is the result of inspecting a stored certificate.
// Validity dates are kept in the signing engine's own text format.
type CertificateInfo struct {
	Issuer           string   `json:"issuer" yaml:"issuer"`
	Subject          string   `json:"subject" yaml:"subject"`
	NotBeforeRaw     string   `json:"not_before" yaml:"not_before"`
	NotAfterRaw      string   `json:"not_after" yaml:"not_after"`
	Fingerprint      string   `json:"fingerprint" yaml:"fingerprint"`
	BasicConstraints []string `json:"basic_constraints" yaml:"basic_constraints"`
	ExtendedUsage    []string `json:"extended_usage" yaml:"extended_usage"`
	SubjectAltName   []string `json:"subject_alt_name" yaml:"subject_alt_name"`
	KeyUsage         []string `json:"key_usage" yaml:"key_usage"`
}

func NewCertificateInfo() *CertificateInfo {
	return &CertificateInfo{
		BasicConstraints: []string{},
		ExtendedUsage:    []string{},
		SubjectAltName:   []string{},
		KeyUsage:         []string{},
	}
}

func (c *CertificateInfo) IssuerDN() (dn.DistinguishedName, error) {
	return dn.Parse(c.Issuer)
}

func (c *CertificateInfo) SubjectDN() (dn.DistinguishedName, error) {
	return dn.Parse(c.Subject)
}

func (c *CertificateInfo) IsSelfSigned() bool {
	return c.Issuer == c.Subject
}

// StoredCertificate is an identity found while walking the certificate store.
type StoredCertificate struct {
	Name     string               `json:"name" yaml:"name"`
	IsCA     bool                 `json:"ca" yaml:"ca"`
	CertPath string               `json:"path" yaml:"path"`
	Children []*StoredCertificate `json:"children,omitempty" yaml:"children,omitempty"`
}
