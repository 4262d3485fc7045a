// Package certinfo parses the text printed by the signing engine when inspecting
// a certificate. The set of accepted parameters and extensions is closed: unknown
// entries fail the parse instead of being dropped.
package certinfo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/r2dtools/certman/internal/certerr"
	"github.com/r2dtools/certman/internal/dto"
	"github.com/samber/lo"
)

const (
	ExtBasicConstraints       = "Basic Constraints"
	ExtSubjectAlternativeName = "Subject Alternative Name"
	ExtKeyUsage               = "Key Usage"
	ExtExtendedKeyUsage       = "Extended Key Usage"

	fingerprintParam = "SHA1 Fingerprint"
)

var (
	paramLineRegexp     = regexp.MustCompile(`^([^\s=][^=]*)=(.*)$`)
	extensionLineRegexp = regexp.MustCompile(`^X509v3 (.+?):(?:\s+critical)?\s*$`)
)

type state int

const (
	stateIdle state = iota
	stateInExtension
)

type parser struct {
	info      *dto.CertificateInfo
	state     state
	extension string
	lines     []string
}

// Parse turns inspection output into a CertificateInfo.
//
//	notBefore=Dec 19 13:23:21 2020 GMT
//	subject=CN = wildcard.foo.name
//	X509v3 Subject Alternative Name:
//	    DNS:foo.name, DNS:*.foo.name
func Parse(text string) (*dto.CertificateInfo, error) {
	p := &parser{info: dto.NewCertificateInfo(), state: stateIdle}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if err := p.consume(line); err != nil {
			return nil, err
		}
	}

	if err := p.flush(); err != nil {
		return nil, err
	}

	return p.info, nil
}

func (p *parser) consume(line string) error {
	if matches := paramLineRegexp.FindStringSubmatch(line); matches != nil {
		if err := p.flush(); err != nil {
			return err
		}

		return p.setParam(matches[1], matches[2])
	}

	if matches := extensionLineRegexp.FindStringSubmatch(line); matches != nil {
		if err := p.flush(); err != nil {
			return err
		}

		p.state = stateInExtension
		p.extension = matches[1]
		p.lines = nil

		return nil
	}

	if strings.TrimSpace(line) == "" {
		return nil
	}

	if line[0] == ' ' || line[0] == '\t' {
		if p.state != stateInExtension {
			return fmt.Errorf("%w: unexpected indented line '%s'", certerr.ErrMalformedInput, strings.TrimSpace(line))
		}

		p.lines = append(p.lines, strings.TrimSpace(line))

		return nil
	}

	// engine notices such as "No extensions in certificate"
	return nil
}

func (p *parser) setParam(key, value string) error {
	switch {
	case key == "notBefore":
		p.info.NotBeforeRaw = value
	case key == "notAfter":
		p.info.NotAfterRaw = value
	case key == "issuer":
		p.info.Issuer = value
	case key == "subject":
		p.info.Subject = value
	// OpenSSL 1.1 prints "SHA1 Fingerprint", 3.x prints "sha1 Fingerprint"
	case strings.EqualFold(key, fingerprintParam):
		p.info.Fingerprint = value
	default:
		return fmt.Errorf("%w: unknown parameter '%s'", certerr.ErrMalformedInput, key)
	}

	return nil
}

// flush stores the pending extension, if any, and returns to the idle state.
func (p *parser) flush() error {
	if p.state != stateInExtension {
		return nil
	}

	name := p.extension
	values := splitValues(p.lines)
	p.state = stateIdle
	p.extension = ""
	p.lines = nil

	switch name {
	case ExtBasicConstraints:
		p.info.BasicConstraints = values
	case ExtSubjectAlternativeName:
		p.info.SubjectAltName = values
	case ExtKeyUsage:
		p.info.KeyUsage = values
	case ExtExtendedKeyUsage:
		p.info.ExtendedUsage = values
	default:
		return fmt.Errorf("%w: unexpected extension '%s'", certerr.ErrMalformedInput, name)
	}

	return nil
}

func splitValues(lines []string) []string {
	values := lo.FlatMap(lines, func(line string, _ int) []string {
		return lo.Map(strings.Split(line, ","), func(value string, _ int) string {
			return strings.TrimSpace(value)
		})
	})

	return lo.Filter(values, func(value string, _ int) bool {
		return value != ""
	})
}
