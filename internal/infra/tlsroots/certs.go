package tlsroots

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long CertReloader waits after the last file
// event before reloading the key pair.
const DefaultDebounce = 500 * time.Millisecond

// CertReloader serves a certificate and key pair from disk and swaps
// in a new pair whenever either file changes. A pair that fails to
// load leaves the previous one in place.
type CertReloader struct {
	certFile string
	keyFile  string
	debounce time.Duration
	logger   *slog.Logger

	cert    atomic.Pointer[tls.Certificate]
	reloads atomic.Uint64
}

// CertOption configures a CertReloader.
type CertOption func(*CertReloader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CertOption {
	return func(r *CertReloader) {
		r.logger = logger
	}
}

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) CertOption {
	return func(r *CertReloader) {
		r.debounce = d
	}
}

// NewCertReloader loads the initial key pair.
func NewCertReloader(certFile, keyFile string, opts ...CertOption) (*CertReloader, error) {
	r := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// Reloads returns how many key pairs have been loaded, the initial one
// included.
func (r *CertReloader) Reloads() uint64 {
	return r.reloads.Load()
}

// ServerTLSConfig returns a server TLS config backed by r.
func (r *CertReloader) ServerTLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// Run reloads the key pair on file changes until ctx is done.
// Directories are watched so rename-and-replace writes are seen.
func (r *CertReloader) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer w.Close()

	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}

	names := map[string]struct{}{
		filepath.Base(r.certFile): {},
		filepath.Base(r.keyFile):  {},
	}

	r.logger.Info("certificate watcher started",
		"cert_file", r.certFile,
		"key_file", r.keyFile,
	)

	timer := time.NewTimer(r.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, ours := names[filepath.Base(event.Name)]; !ours {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(r.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("certificate watcher error", "error", err)
		case <-timer.C:
			if err := r.reload(); err != nil {
				r.logger.Error("certificate reload failed",
					"error", err,
					"cert_file", r.certFile,
					"key_file", r.keyFile,
				)
			}
		}
	}
}

func (r *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	r.cert.Store(&cert)
	r.reloads.Add(1)

	r.logger.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}
