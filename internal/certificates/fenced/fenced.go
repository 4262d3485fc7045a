// Package fenced decodes and encodes PEM-style "-----BEGIN <LABEL>-----" blocks
// exchanged with the signing engine and kept in the certificate store.
package fenced

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/r2dtools/certman/internal/certerr"
)

const (
	LabelCertificate        = "CERTIFICATE"
	LabelPrivateKey         = "PRIVATE KEY"
	LabelRSAPrivateKey      = "RSA PRIVATE KEY"
	LabelCertificateRequest = "CERTIFICATE REQUEST"
)

var blockRegexp = regexp.MustCompile(`(?s)-----BEGIN ([^\n]+?)-----\n.*?-----END ([^\n]+?)-----(?:\n|$)`)

type Block struct {
	Label string
	Raw   string
}

// Decode extracts fenced blocks in order of appearance. Text outside of any block
// is concatenated and returned as leftover.
func Decode(text string) ([]Block, string, error) {
	var (
		blocks   []Block
		leftover strings.Builder
	)

	position := 0

	for _, match := range blockRegexp.FindAllStringSubmatchIndex(text, -1) {
		begin := text[match[2]:match[3]]
		end := text[match[4]:match[5]]

		if begin != end {
			return nil, "", fmt.Errorf("%w: begin/end mismatch: '%s' != '%s'", certerr.ErrMalformedInput, begin, end)
		}

		leftover.WriteString(text[position:match[0]])
		blocks = append(blocks, Block{Label: begin, Raw: terminate(text[match[0]:match[1]])})
		position = match[1]
	}

	leftover.WriteString(text[position:])

	return blocks, leftover.String(), nil
}

// Assemble dispatches decoded blocks into the bundle by label.
func Assemble(bundle *Bundle, blocks []Block) error {
	for _, block := range blocks {
		if err := bundle.set(block); err != nil {
			return err
		}
	}

	return nil
}

// Encode concatenates the present bundle parts, each terminated by a single newline.
func Encode(bundle *Bundle) string {
	var builder strings.Builder

	for _, part := range bundle.parts() {
		if part != "" {
			builder.WriteString(terminate(part))
		}
	}

	return builder.String()
}

func terminate(block string) string {
	return strings.TrimRight(block, "\n") + "\n"
}
