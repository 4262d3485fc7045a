package certificates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/r2dtools/certman/config"
	"github.com/r2dtools/certman/internal/certerr"
	"github.com/r2dtools/certman/internal/certificates/fenced"
	"github.com/r2dtools/certman/internal/certificates/lock"
	"github.com/r2dtools/certman/internal/dto"
	"github.com/r2dtools/certman/internal/logger"
	"github.com/unknwon/com"
)

const (
	SelfSignedName    = "+SELF_SIGNED"
	PrivateKeyDirName = "private"
	CADirSuffix       = ".d"

	CertSuffix    = ".pem"
	KeySuffix     = ".key"
	RSAKeySuffix  = ".rsa"
	RequestSuffix = ".req"

	certDirPerm        = 0755
	privateKeyDirPerm  = 0700
	certFilePerm       = 0644
	privateKeyFilePerm = 0600
)

// Check selects artifacts for VerifyExists and Load.
type Check int

const (
	CheckCert Check = 1 << iota
	CheckKey
	CheckRSAKey
	CheckRequest

	CheckAll = CheckCert | CheckKey | CheckRSAKey | CheckRequest
)

// Paths are the artifact locations of one identity. They are derived, never stored.
type Paths struct {
	Cert    string
	Key     string
	RSAKey  string
	Request string
}

type storageItem struct {
	check       Check
	name        string
	description string
	path        func(p *Paths) string
}

// fixed check order: cert, key, rsa key, request
var storageItems = []storageItem{
	{CheckCert, "cert", "", func(p *Paths) string { return p.Cert }},
	{CheckKey, "key", "Private key for ", func(p *Paths) string { return p.Key }},
	{CheckRSAKey, "rsa_key", "RSA private key for ", func(p *Paths) string { return p.RSAKey }},
	{CheckRequest, "req", "CSR for ", func(p *Paths) string { return p.Request }},
}

type DefaultStorage struct {
	*sync.RWMutex
	path    string
	keyDir  string
	locking bool
	logger  logger.Logger
}

// Paths derives artifact paths of the identity and makes sure the containing
// directories exist, the private key directory with owner-only permissions.
func (s *DefaultStorage) Paths(identity *Identity) (*Paths, error) {
	var certBasePath, keyBasePath string
	var err error

	if identity.IsCA {
		certBasePath, keyBasePath, err = s.makeBasePaths(identity.Basename, s.path, s.keyDir)
	} else {
		parentName := SelfSignedName

		if identity.Parent != nil {
			parentName = identity.Parent.Basename
		}

		var parentBasePath string
		parentBasePath, _, err = s.makeBasePaths(parentName, s.path, s.keyDir)

		if err != nil {
			return nil, err
		}

		certBasePath, keyBasePath, err = s.makeBasePaths(identity.Basename, parentBasePath+CADirSuffix, "")
	}

	if err != nil {
		return nil, err
	}

	return &Paths{
		Cert:    certBasePath + CertSuffix,
		Key:     keyBasePath + KeySuffix,
		RSAKey:  keyBasePath + RSAKeySuffix,
		Request: certBasePath + RequestSuffix,
	}, nil
}

// VerifyExists reports the first failing artifact among checks. With invert set
// an artifact that is present fails the check instead of a missing one.
func (s *DefaultStorage) VerifyExists(identity *Identity, paths *Paths, checks Check, invert bool) error {
	if paths == nil {
		var err error
		paths, err = s.Paths(identity)

		if err != nil {
			return err
		}
	}

	for _, item := range storageItems {
		if checks&item.check == 0 {
			continue
		}

		exists := com.IsExist(item.path(paths))

		if exists == invert {
			if invert {
				return fmt.Errorf("%w: %s%s already exists in the store", certerr.ErrAlreadyExists, item.description, identity.Description())
			}

			return fmt.Errorf("%w: %s%s was not found in the store", certerr.ErrNotFound, item.description, identity.Description())
		}
	}

	return nil
}

// Load reads the selected artifacts of the identity into a new bundle.
func (s *DefaultStorage) Load(identity *Identity, checks Check) (*fenced.Bundle, error) {
	s.RLock()
	defer s.RUnlock()

	paths, err := s.Paths(identity)

	if err != nil {
		return nil, err
	}

	if err := s.VerifyExists(identity, paths, checks, false); err != nil {
		return nil, err
	}

	bundle := &fenced.Bundle{}

	for _, item := range storageItems {
		if checks&item.check == 0 {
			continue
		}

		content, err := os.ReadFile(item.path(paths))

		if err != nil {
			return nil, fmt.Errorf("could not read %s of %s: %v", item.name, identity.Description(), err)
		}

		if _, err := bundle.Add(string(content)); err != nil {
			return nil, fmt.Errorf("could not load %s of %s: %w", item.name, identity.Description(), err)
		}
	}

	return bundle, nil
}

// Store writes the bundle to the identity paths. Certificate and private key are
// mandatory, the RSA key is mandatory when requireRSA is set, the request is written when present.
// Files are never overwritten; on failure the files written by this call are removed.
func (s *DefaultStorage) Store(identity *Identity, bundle *fenced.Bundle, requireRSA bool) error {
	s.Lock()
	defer s.Unlock()

	paths, err := s.Paths(identity)

	if err != nil {
		return err
	}

	certificate, err := bundle.RequireCertificate()

	if err != nil {
		return err
	}

	privateKey, err := bundle.RequirePrivateKey()

	if err != nil {
		return err
	}

	if requireRSA {
		if _, err := bundle.RequireRSAPrivateKey(); err != nil {
			return err
		}
	}

	files := []struct {
		path    string
		content string
		perm    os.FileMode
	}{
		{paths.Cert, certificate, certFilePerm},
		{paths.Key, privateKey, privateKeyFilePerm},
		{paths.RSAKey, bundle.RSAPrivateKey, privateKeyFilePerm},
		{paths.Request, bundle.CertificateRequest, certFilePerm},
	}
	var written []string

	for _, file := range files {
		if file.content == "" {
			continue
		}

		if err := writeNewFile(file.path, file.content, file.perm); err != nil {
			s.removeFiles(written)

			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%w: %s already exists in the store", certerr.ErrAlreadyExists, file.path)
			}

			return fmt.Errorf("could not save %s to the storage: %v", identity.Description(), err)
		}

		written = append(written, file.path)
		s.logger.Debug("saved '%s'", file.path)
	}

	return nil
}

// LockIdentity takes the advisory lock of the identity when locking is enabled.
// The returned release function is not nil when err is nil.
func (s *DefaultStorage) LockIdentity(identity *Identity) (func(), error) {
	if !s.locking {
		return func() {}, nil
	}

	paths, err := s.Paths(identity)

	if err != nil {
		return nil, err
	}

	lockPath := filepath.Join(filepath.Dir(paths.Cert), "."+identity.Basename+lock.FileSuffix)
	fileLock, err := lock.Acquire(lockPath, s.logger)

	if err != nil {
		return nil, fmt.Errorf("could not lock %s: %w", identity.Description(), err)
	}

	return func() {
		if err := fileLock.Release(); err != nil {
			s.logger.Error("could not release lock '%s': %v", lockPath, err)
		}
	}, nil
}

// GetCertificates walks the store: CA certificates at the root with the
// certificates they signed as children, followed by self-signed certificates.
func (s *DefaultStorage) GetCertificates() ([]*dto.StoredCertificate, error) {
	s.RLock()
	defer s.RUnlock()

	if !com.IsDir(s.path) {
		return nil, fmt.Errorf("%w: store directory '%s' does not exist", certerr.ErrNotFound, s.path)
	}

	cas, err := s.getStorageCertNames(s.path)

	if err != nil {
		return nil, err
	}

	certs := []*dto.StoredCertificate{}

	for _, name := range cas {
		ca := &dto.StoredCertificate{
			Name:     name,
			IsCA:     true,
			CertPath: filepath.Join(s.path, name+CertSuffix),
		}
		ca.Children, err = s.getChildren(name)

		if err != nil {
			return nil, err
		}

		certs = append(certs, ca)
	}

	selfSigned, err := s.getChildren(SelfSignedName)

	if err != nil {
		return nil, err
	}

	return append(certs, selfSigned...), nil
}

func (s *DefaultStorage) getChildren(caName string) ([]*dto.StoredCertificate, error) {
	dir := filepath.Join(s.path, caName+CADirSuffix)

	if !com.IsDir(dir) {
		return nil, nil
	}

	names, err := s.getStorageCertNames(dir)

	if err != nil {
		return nil, err
	}

	children := []*dto.StoredCertificate{}

	for _, name := range names {
		children = append(children, &dto.StoredCertificate{Name: name, CertPath: filepath.Join(dir, name+CertSuffix)})
	}

	return children, nil
}

func (s *DefaultStorage) getStorageCertNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("could not get certificate list in the storage: %v", err)
	}

	names := []string{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		if filepath.Ext(name) != CertSuffix || strings.HasPrefix(name, ".") {
			continue
		}

		names = append(names, strings.TrimSuffix(name, CertSuffix))
	}

	sort.Strings(names)

	return names, nil
}

// makeBasePaths ensures certDir and keyDir exist and returns the base paths of basename in them.
// keyDir defaults to the private subdirectory of certDir.
func (s *DefaultStorage) makeBasePaths(basename, certDir, keyDir string) (string, string, error) {
	if keyDir == "" {
		keyDir = filepath.Join(certDir, PrivateKeyDirName)
	}

	if err := os.MkdirAll(certDir, certDirPerm); err != nil {
		return "", "", fmt.Errorf("could not create directory '%s': %v", certDir, err)
	}

	if err := ensurePrivateDir(keyDir); err != nil {
		return "", "", err
	}

	return filepath.Join(certDir, basename), filepath.Join(keyDir, basename), nil
}

func (s *DefaultStorage) removeFiles(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			s.logger.Error("could not remove '%s': %v", path, err)
		}
	}
}

func ensurePrivateDir(dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), certDirPerm); err != nil {
		return fmt.Errorf("could not create directory '%s': %v", filepath.Dir(dir), err)
	}

	if err := os.Mkdir(dir, privateKeyDirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("could not create private key directory '%s': %v", dir, err)
	}

	// an existing directory keeps its mode on Mkdir
	if err := os.Chmod(dir, privateKeyDirPerm); err != nil {
		return fmt.Errorf("could not restrict permissions of '%s': %v", dir, err)
	}

	return nil
}

func writeNewFile(path, content string, perm os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)

	if err != nil {
		return err
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()

		return err
	}

	return file.Close()
}

func CreateCertStorage(config *config.Config, logger logger.Logger) (*DefaultStorage, error) {
	path := config.StorePath

	if !com.IsExist(path) {
		err := os.MkdirAll(path, certDirPerm)

		if err != nil {
			return nil, err
		}
	}

	keyDir := config.KeyDir

	if keyDir == "" {
		keyDir = filepath.Join(path, PrivateKeyDirName)
	}

	return &DefaultStorage{
		RWMutex: &sync.RWMutex{},
		path:    path,
		keyDir:  keyDir,
		locking: config.Locking,
		logger:  logger,
	}, nil
}
