package fenced

import (
	"fmt"

	"github.com/r2dtools/certman/internal/certerr"
)

// Bundle holds at most one block of each kind produced by a single issuance or
// retrieval. A part cannot be replaced once it is set.
type Bundle struct {
	Certificate        string
	PrivateKey         string
	RSAPrivateKey      string
	CertificateRequest string
}

// Add decodes text and assembles its blocks into the bundle, returning the text found outside of blocks.
// The bundle is left unchanged when any block of text is rejected.
func (b *Bundle) Add(text string) (string, error) {
	blocks, leftover, err := Decode(text)

	if err != nil {
		return "", err
	}

	assembled := *b

	if err := Assemble(&assembled, blocks); err != nil {
		return "", err
	}

	*b = assembled

	return leftover, nil
}

func (b *Bundle) RequireCertificate() (string, error) {
	return requirePart(b.Certificate, "certificate")
}

func (b *Bundle) RequirePrivateKey() (string, error) {
	return requirePart(b.PrivateKey, "private key")
}

func (b *Bundle) RequireRSAPrivateKey() (string, error) {
	return requirePart(b.RSAPrivateKey, "RSA private key")
}

func (b *Bundle) RequireCertificateRequest() (string, error) {
	return requirePart(b.CertificateRequest, "certificate request")
}

func (b *Bundle) set(block Block) error {
	var field *string

	switch block.Label {
	case LabelCertificate:
		field = &b.Certificate
	case LabelPrivateKey:
		field = &b.PrivateKey
	case LabelRSAPrivateKey:
		field = &b.RSAPrivateKey
	case LabelCertificateRequest:
		field = &b.CertificateRequest
	default:
		return fmt.Errorf("%w: unknown block '%s'", certerr.ErrMalformedInput, block.Label)
	}

	if *field != "" {
		return fmt.Errorf("%w: duplicate block '%s'", certerr.ErrMalformedInput, block.Label)
	}

	*field = block.Raw

	return nil
}

func (b *Bundle) parts() []string {
	return []string{b.Certificate, b.PrivateKey, b.RSAPrivateKey, b.CertificateRequest}
}

func requirePart(part, name string) (string, error) {
	if part == "" {
		return "", fmt.Errorf("%w: missing %s", certerr.ErrNotFound, name)
	}

	return part, nil
}
