package engine

import (
	"context"

	"github.com/r2dtools/certman/config"
	"github.com/r2dtools/certman/internal/certificates/engine/openssl"
	"github.com/r2dtools/certman/internal/certificates/fenced"
	"github.com/r2dtools/certman/internal/certificates/request"
	"github.com/r2dtools/certman/internal/logger"
	"github.com/r2dtools/certman/internal/tempfiles"
)

// SigningEngine performs key generation, signing and inspection. Results are
// assembled into the given bundle; configuration files go through the cleaner.
type SigningEngine interface {
	SelfSigned(ctx context.Context, cleaner *tempfiles.Cleaner, bundle *fenced.Bundle, request request.IssueRequest) error
	Signed(ctx context.Context, cleaner *tempfiles.Cleaner, bundle *fenced.Bundle, request request.IssueRequest, caCertPath, caKeyPath string) error
	AddRSAKey(ctx context.Context, bundle *fenced.Bundle) error
	Inspect(ctx context.Context, certPath string) (string, error)
}

func CreateSigningEngine(config *config.Config, logger logger.Logger) (SigningEngine, error) {
	return openssl.CreateOpenSSL(config, logger)
}
