package certificates

import (
	"fmt"
	"strings"

	"github.com/r2dtools/certman/internal/certerr"
)

// Identity is the logical name of a certificate in the store. A nil Parent
// means the certificate is self-signed.
type Identity struct {
	Basename string
	IsCA     bool
	Parent   *Identity
}

func NewCAIdentity(basename string, parent *Identity) *Identity {
	return &Identity{Basename: basename, IsCA: true, Parent: parent}
}

func NewCertIdentity(basename string, parent *Identity) *Identity {
	return &Identity{Basename: basename, Parent: parent}
}

// Description is used in precondition failures, e.g. "certificate www signed by CA root".
func (i *Identity) Description() string {
	if i.IsCA {
		return fmt.Sprintf("CA certificate %s", i.Basename)
	}

	if i.Parent != nil && i.Parent.Basename != SelfSignedName {
		return fmt.Sprintf("certificate %s signed by CA %s", i.Basename, i.Parent.Basename)
	}

	return fmt.Sprintf("self-signed certificate %s", i.Basename)
}

func (i *Identity) Validate() error {
	for identity := i; identity != nil; identity = identity.Parent {
		if err := validateBasename(identity.Basename); err != nil {
			return err
		}
	}

	return nil
}

func validateBasename(basename string) error {
	switch {
	case basename == "":
		return fmt.Errorf("%w: certificate name is empty", certerr.ErrConfiguration)
	case strings.ContainsAny(basename, `/\`):
		return fmt.Errorf("%w: certificate name '%s' contains a path separator", certerr.ErrConfiguration, basename)
	case strings.HasPrefix(basename, "."), strings.HasPrefix(basename, "+"):
		return fmt.Errorf("%w: certificate name '%s' must not start with '.' or '+'", certerr.ErrConfiguration, basename)
	case basename == PrivateKeyDirName:
		return fmt.Errorf("%w: certificate name '%s' is reserved", certerr.ErrConfiguration, basename)
	}

	return nil
}
