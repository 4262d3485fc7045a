package openssl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/r2dtools/certman/config"
	"github.com/r2dtools/certman/internal/certerr"
	"github.com/r2dtools/certman/internal/certificates/fenced"
	"github.com/r2dtools/certman/internal/certificates/request"
	"github.com/r2dtools/certman/internal/logger"
	"github.com/r2dtools/certman/internal/tempfiles"
)

const configFileSuffix = ".cnf"

var inspectedExtensions = []string{"basicConstraints", "keyUsage", "extendedKeyUsage", "subjectAltName"}

type OpenSSL struct {
	bin            string
	timeout        time.Duration
	rsaTraditional bool
	logger         logger.Logger
}

func (o *OpenSSL) SelfSigned(ctx context.Context, cleaner *tempfiles.Cleaner, bundle *fenced.Bundle, request request.IssueRequest) error {
	configPath, err := cleaner.CreateFile(request.Config().Generate(), configFileSuffix)

	if err != nil {
		return err
	}

	output, err := o.run(ctx, buildSelfSignedParams(configPath, request), "")

	if err != nil {
		return err
	}

	_, err = bundle.Add(output)

	return err
}

// Signed creates a key and a certificate request, then signs the request with the CA.
func (o *OpenSSL) Signed(
	ctx context.Context,
	cleaner *tempfiles.Cleaner,
	bundle *fenced.Bundle,
	request request.IssueRequest,
	caCertPath, caKeyPath string,
) error {
	configPath, err := cleaner.CreateFile(request.Config().Generate(), configFileSuffix)

	if err != nil {
		return err
	}

	output, err := o.run(ctx, buildRequestParams(configPath), "")

	if err != nil {
		return err
	}

	if _, err := bundle.Add(output); err != nil {
		return err
	}

	csr, err := bundle.RequireCertificateRequest()

	if err != nil {
		return err
	}

	params := buildSignParams(configPath, caCertPath, caKeyPath, newSerial(), request)
	output, err = o.run(ctx, params, csr)

	if err != nil {
		return err
	}

	_, err = bundle.Add(output)

	return err
}

// AddRSAKey converts the bundle private key into the traditional RSA format.
func (o *OpenSSL) AddRSAKey(ctx context.Context, bundle *fenced.Bundle) error {
	privateKey, err := bundle.RequirePrivateKey()

	if err != nil {
		return err
	}

	output, err := o.run(ctx, buildRSAParams(o.rsaTraditional), privateKey)

	if err != nil {
		return err
	}

	_, err = bundle.Add(output)

	return err
}

func (o *OpenSSL) Inspect(ctx context.Context, certPath string) (string, error) {
	return o.run(ctx, buildInspectParams(certPath), "")
}

func (o *OpenSSL) run(ctx context.Context, params []string, input string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.bin, params...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	o.logger.Debug("running %s %s", o.bin, strings.Join(params, " "))
	err := cmd.Run()

	if err != nil {
		command := o.bin + " " + params[0]

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s timed out after %s", certerr.ErrEngineFailure, command, o.timeout)
		}

		output := strings.TrimSpace(stderr.String())

		if output == "" {
			return "", fmt.Errorf("%w: %s: %v", certerr.ErrEngineFailure, command, err)
		}

		return "", fmt.Errorf("%w: %s: %v\nOutput:\n%s", certerr.ErrEngineFailure, command, err, output)
	}

	if stderr.Len() > 0 {
		o.logger.Debug("%s", strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

func buildSelfSignedParams(configPath string, request request.IssueRequest) []string {
	return []string{"req", "-new", "-x509", "-config", configPath, "-days", strconv.Itoa(request.Days)}
}

func buildRequestParams(configPath string) []string {
	return []string{"req", "-new", "-config", configPath}
}

func buildSignParams(configPath, caCertPath, caKeyPath, serial string, r request.IssueRequest) []string {
	return []string{
		"x509", "-req", "-in", "-",
		"-CA", caCertPath,
		"-CAkey", caKeyPath,
		"-days", strconv.Itoa(r.Days),
		"-" + r.Digest,
		"-set_serial", serial,
		"-extfile", configPath,
		"-extensions", request.ExtensionsSection(),
	}
}

func buildRSAParams(traditional bool) []string {
	params := []string{"rsa"}

	if traditional {
		params = append(params, "-traditional")
	}

	return params
}

func buildInspectParams(certPath string) []string {
	return []string{
		"x509", "-noout",
		"-dates", "-subject", "-issuer",
		"-fingerprint", "-sha1",
		"-ext", strings.Join(inspectedExtensions, ","),
		"-in", certPath,
	}
}

// newSerial returns a random positive serial number in hex notation.
func newSerial() string {
	id := uuid.New()
	id[0] &= 0x7f

	return "0x" + strings.ReplaceAll(id.String(), "-", "")
}

func CreateOpenSSL(config *config.Config, logger logger.Logger) (*OpenSSL, error) {
	bin, err := exec.LookPath(config.OpenSSLBin)

	if err != nil {
		return nil, fmt.Errorf("%w: openssl binary '%s' not found: %v", certerr.ErrConfiguration, config.OpenSSLBin, err)
	}

	timeout := config.OpenSSLTimeout

	if timeout <= 0 {
		return nil, fmt.Errorf("%w: invalid openssl timeout %s", certerr.ErrConfiguration, timeout)
	}

	return &OpenSSL{
		bin:            bin,
		timeout:        timeout,
		rsaTraditional: config.RSATraditional,
		logger:         logger,
	}, nil
}
