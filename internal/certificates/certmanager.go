package certificates

import (
	"context"
	"fmt"

	"github.com/r2dtools/certman/config"
	"github.com/r2dtools/certman/internal/certificates/certinfo"
	"github.com/r2dtools/certman/internal/certificates/engine"
	"github.com/r2dtools/certman/internal/certificates/fenced"
	"github.com/r2dtools/certman/internal/certificates/request"
	"github.com/r2dtools/certman/internal/dto"
	"github.com/r2dtools/certman/internal/logger"
	"github.com/r2dtools/certman/internal/tempfiles"
)

type CertStorage interface {
	Paths(identity *Identity) (*Paths, error)
	VerifyExists(identity *Identity, paths *Paths, checks Check, invert bool) error
	Load(identity *Identity, checks Check) (*fenced.Bundle, error)
	Store(identity *Identity, bundle *fenced.Bundle, requireRSA bool) error
	LockIdentity(identity *Identity) (func(), error)
	GetCertificates() ([]*dto.StoredCertificate, error)
}

type CertificateManager struct {
	storage CertStorage
	engine  engine.SigningEngine
	logger  logger.Logger
}

// Issue creates a certificate for the identity: self-signed when it has no parent,
// otherwise signed by the parent CA which must already be in the store.
func (c *CertificateManager) Issue(
	ctx context.Context,
	cleaner *tempfiles.Cleaner,
	identity *Identity,
	issueRequest request.IssueRequest,
) (*fenced.Bundle, error) {
	issueRequest = issueRequest.WithDefaults()
	issueRequest.IsCA = identity.IsCA

	if err := identity.Validate(); err != nil {
		return nil, err
	}

	if err := issueRequest.Validate(); err != nil {
		return nil, err
	}

	release, err := c.storage.LockIdentity(identity)

	if err != nil {
		return nil, err
	}

	defer release()

	var caPaths *Paths

	if identity.Parent != nil {
		caPaths, err = c.storage.Paths(identity.Parent)

		if err != nil {
			return nil, err
		}

		if err := c.storage.VerifyExists(identity.Parent, caPaths, CheckCert|CheckKey, false); err != nil {
			return nil, err
		}
	}

	if err := c.storage.VerifyExists(identity, nil, CheckAll, true); err != nil {
		return nil, err
	}

	bundle := &fenced.Bundle{}
	c.logger.Info("issuing %s", identity.Description())

	if caPaths != nil {
		err = c.engine.Signed(ctx, cleaner, bundle, issueRequest, caPaths.Cert, caPaths.Key)
	} else {
		err = c.engine.SelfSigned(ctx, cleaner, bundle, issueRequest)
	}

	if err != nil {
		c.logger.Debug("%v", err)

		return nil, err
	}

	if err := c.engine.AddRSAKey(ctx, bundle); err != nil {
		return nil, err
	}

	if err := c.storage.Store(identity, bundle, true); err != nil {
		return nil, err
	}

	return bundle, nil
}

// Get loads the selected parts of a stored certificate.
func (c *CertificateManager) Get(identity *Identity, checks Check) (*fenced.Bundle, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	return c.storage.Load(identity, checks)
}

// Inspect runs the signing engine on the stored certificate and parses its report.
func (c *CertificateManager) Inspect(ctx context.Context, identity *Identity) (*dto.CertificateInfo, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	paths, err := c.storage.Paths(identity)

	if err != nil {
		return nil, err
	}

	if err := c.storage.VerifyExists(identity, paths, CheckCert, false); err != nil {
		return nil, err
	}

	output, err := c.engine.Inspect(ctx, paths.Cert)

	if err != nil {
		return nil, err
	}

	info, err := certinfo.Parse(output)

	if err != nil {
		return nil, fmt.Errorf("could not parse %s details: %w", identity.Description(), err)
	}

	return info, nil
}

func (c *CertificateManager) GetStorageCertificates() ([]*dto.StoredCertificate, error) {
	return c.storage.GetCertificates()
}

func CreateCertificateManager(config *config.Config, logger logger.Logger) (*CertificateManager, error) {
	signingEngine, err := engine.CreateSigningEngine(config, logger)

	if err != nil {
		return nil, err
	}

	storage, err := CreateCertStorage(config, logger)

	if err != nil {
		return nil, err
	}

	return NewCertificateManager(storage, signingEngine, logger), nil
}

func NewCertificateManager(storage CertStorage, signingEngine engine.SigningEngine, logger logger.Logger) *CertificateManager {
	return &CertificateManager{storage: storage, engine: signingEngine, logger: logger}
}
