// Package dn models an X.509 Distinguished Name with the fixed field order
// used both in request configuration documents and in the one-line form.
package dn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/r2dtools/certman/internal/certerr"
)

const pairSeparator = ", "

var indexedOuKey = regexp.MustCompile(`^[0-9]+\.OU$`)

type Item struct {
	Key   string
	Value string
}

// DistinguishedName holds optional DN fields. An empty string means the field is absent.
type DistinguishedName struct {
	Country           string   `mapstructure:"country" yaml:"country,omitempty"`
	State             string   `mapstructure:"state" yaml:"state,omitempty"`
	Locality          string   `mapstructure:"locality" yaml:"locality,omitempty"`
	Organization      string   `mapstructure:"organization" yaml:"organization,omitempty"`
	OrganizationUnits []string `mapstructure:"organization_units" yaml:"organization_units,omitempty"`
	CommonName        string   `mapstructure:"common_name" yaml:"common_name,omitempty"`
	EmailAddress      string   `mapstructure:"email_address" yaml:"email_address,omitempty"`
}

// Items returns the DN fields in configuration order: C, ST, L, O, OU*, CN, emailAddress.
// Several organization units are keyed 0.OU, 1.OU and so on.
func (d DistinguishedName) Items() []Item {
	items := []Item{}
	items = appendItem(items, "C", d.Country)
	items = appendItem(items, "ST", d.State)
	items = appendItem(items, "L", d.Locality)
	items = appendItem(items, "O", d.Organization)

	if len(d.OrganizationUnits) > 1 {
		for i, ou := range d.OrganizationUnits {
			items = append(items, Item{Key: fmt.Sprintf("%d.OU", i), Value: ou})
		}
	} else if len(d.OrganizationUnits) == 1 {
		items = append(items, Item{Key: "OU", Value: d.OrganizationUnits[0]})
	}

	items = appendItem(items, "CN", d.CommonName)
	items = appendItem(items, "emailAddress", d.EmailAddress)

	return items
}

// String renders the one-line form, e.g. "C=US, O=Example, OU=a, OU=b, CN=example.com".
func (d DistinguishedName) String() string {
	parts := []string{}

	for _, item := range d.Items() {
		key := item.Key

		if indexedOuKey.MatchString(key) {
			key = "OU"
		}

		parts = append(parts, key+"="+item.Value)
	}

	return strings.Join(parts, pairSeparator)
}

func (d DistinguishedName) IsEmpty() bool {
	return len(d.Items()) == 0
}

// WithDefaults fills absent fields from defaults.
func (d DistinguishedName) WithDefaults(defaults DistinguishedName) DistinguishedName {
	d.Country = firstNonEmpty(d.Country, defaults.Country)
	d.State = firstNonEmpty(d.State, defaults.State)
	d.Locality = firstNonEmpty(d.Locality, defaults.Locality)
	d.Organization = firstNonEmpty(d.Organization, defaults.Organization)
	d.CommonName = firstNonEmpty(d.CommonName, defaults.CommonName)
	d.EmailAddress = firstNonEmpty(d.EmailAddress, defaults.EmailAddress)

	if len(d.OrganizationUnits) == 0 && len(defaults.OrganizationUnits) > 0 {
		d.OrganizationUnits = append([]string{}, defaults.OrganizationUnits...)
	}

	return d
}

// Parse reads the one-line form produced by String and by "openssl x509 -subject".
// Pairs are split on a literal ", ", so values containing that separator are not supported.
func Parse(str string) (DistinguishedName, error) {
	var d DistinguishedName
	str = strings.TrimSpace(str)

	if str == "" {
		return d, nil
	}

	for _, pair := range strings.Split(str, pairSeparator) {
		key, value, ok := strings.Cut(pair, "=")

		if !ok {
			return d, fmt.Errorf("%w: invalid DN component '%s'", certerr.ErrMalformedInput, pair)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case key == "C":
			d.Country = value
		case key == "ST" || key == "S":
			d.State = value
		case key == "L":
			d.Locality = value
		case key == "O":
			d.Organization = value
		case key == "OU" || indexedOuKey.MatchString(key):
			d.OrganizationUnits = append(d.OrganizationUnits, value)
		case key == "CN":
			d.CommonName = value
		case key == "emailAddress":
			d.EmailAddress = value
		default:
			return d, fmt.Errorf("%w: unexpected DN field '%s'", certerr.ErrMalformedInput, key)
		}
	}

	return d, nil
}

func appendItem(items []Item, key, value string) []Item {
	if value == "" {
		return items
	}

	return append(items, Item{Key: key, Value: value})
}

func firstNonEmpty(value, fallback string) string {
	if value != "" {
		return value
	}

	return fallback
}
