// Package vault holds the client-side state of a user's certificate vault:
// the listing mirrored from the store, the search term and the phase the
// shell renders from.
package vault

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/credhex/internal/client/session"
	"github.com/dmitrijs2005/credhex/internal/common"
	"github.com/dmitrijs2005/credhex/internal/logging"
	domain "github.com/dmitrijs2005/credhex/internal/vault"
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Session resolves the signed-in user.
type Session interface {
	Resolve(ctx context.Context) (*session.User, error)
	Current() *session.User
}

// Downloader is implemented by stores that can hand out time-limited links.
type Downloader interface {
	DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Controller orchestrates validation, naming and store calls for one
// signed-in user. Operations that touch the store never overlap; reads of
// the state are safe at any time.
type Controller struct {
	store   domain.Store
	session Session
	logger  logging.Logger
	now     func() time.Time

	opMu      sync.Mutex
	uploading atomic.Bool

	mu    sync.RWMutex
	certs []domain.Certificate
	term  string
	phase Phase
	err   error
}

func NewController(store domain.Store, s Session, logger logging.Logger) *Controller {
	return &Controller{
		store:   store,
		session: s,
		logger:  logger.With("module", "vault_controller"),
		now:     time.Now,
	}
}

// Initialize resolves the user and loads their listing. On a list failure
// the collection is left empty.
func (c *Controller) Initialize(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setPhase(PhaseLoading)

	user, err := c.session.Resolve(ctx)
	if err != nil {
		c.fail(err, true)
		return err
	}

	certs, err := c.store.List(ctx, user.ID)
	if err != nil {
		c.fail(err, true)
		return err
	}
	c.ready(certs)
	return nil
}

// Refresh re-lists the current user's certificates.
func (c *Controller) Refresh(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	user, err := c.currentUser()
	if err != nil {
		return err
	}
	c.setPhase(PhaseLoading)
	return c.relist(ctx, user.ID)
}

// Upload validates f, stores it under a fresh key and re-lists. A
// rejected file changes nothing. Only one upload may run at a time.
func (c *Controller) Upload(ctx context.Context, f domain.File) error {
	if !c.uploading.CompareAndSwap(false, true) {
		return common.ErrUploadInProgress
	}
	defer c.uploading.Store(false)

	if err := domain.Validate(f); err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	user, err := c.currentUser()
	if err != nil {
		return err
	}

	key := domain.ComputeStorageKey(user.ID, f.Name, c.now())
	c.logger.Debug(ctx, "uploading certificate", "key", key, "size", f.SizeBytes)

	err = c.store.Put(ctx, key, f.Data, domain.PutOptions{
		CacheControl: domain.DefaultCacheControl,
		ContentType:  f.Type,
	})
	if err != nil {
		c.fail(err, false)
		return err
	}

	return c.relist(ctx, user.ID)
}

// Delete removes the object named storedName from the user's namespace and
// re-lists. Removing an absent object is not an error.
func (c *Controller) Delete(ctx context.Context, storedName string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	user, err := c.currentUser()
	if err != nil {
		return err
	}

	key := domain.KeyFor(user.ID, storedName)
	c.logger.Debug(ctx, "removing certificate", "key", key)

	if err := c.store.Remove(ctx, key); err != nil {
		c.fail(err, false)
		return err
	}

	return c.relist(ctx, user.ID)
}

func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.term = term
	c.mu.Unlock()
}

func (c *Controller) SearchTerm() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.term
}

// VisibleCertificates returns a copy of the certificates matching the
// search term, in listing order.
func (c *Controller) VisibleCertificates() []domain.Certificate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Certificate, 0, len(c.certs))
	for _, cert := range c.certs {
		if cert.Matches(c.term) {
			out = append(out, cert)
		}
	}
	return out
}

func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Err is the error that put the controller into PhaseError, if any.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Controller) Uploading() bool {
	return c.uploading.Load()
}

func (c *Controller) User() *session.User {
	return c.session.Current()
}

// PublicURL returns the public address of storedName, or "" when nobody is
// signed in.
func (c *Controller) PublicURL(storedName string) string {
	user := c.session.Current()
	if user == nil {
		return ""
	}
	return c.store.PublicURL(domain.KeyFor(user.ID, storedName))
}

// DownloadURL returns a presigned link when the store supports it and the
// public URL otherwise.
func (c *Controller) DownloadURL(ctx context.Context, storedName string) (string, error) {
	user, err := c.currentUser()
	if err != nil {
		return "", err
	}
	key := domain.KeyFor(user.ID, storedName)

	d, ok := c.store.(Downloader)
	if !ok {
		return c.store.PublicURL(key), nil
	}
	return d.DownloadURL(ctx, key, 0)
}

// Reset forgets everything loaded for the previous user.
func (c *Controller) Reset() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.certs = nil
	c.term = ""
	c.phase = PhaseUninitialized
	c.err = nil
}

func (c *Controller) currentUser() (*session.User, error) {
	user := c.session.Current()
	if user == nil {
		return nil, common.ErrNotAuthenticated
	}
	return user, nil
}

// relist must be called with opMu held. A failed listing keeps the prior
// collection.
func (c *Controller) relist(ctx context.Context, userID string) error {
	certs, err := c.store.List(ctx, userID)
	if err != nil {
		c.fail(err, false)
		return err
	}
	c.ready(certs)
	return nil
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

func (c *Controller) ready(certs []domain.Certificate) {
	c.mu.Lock()
	c.certs = append([]domain.Certificate(nil), certs...)
	c.phase = PhaseReady
	c.err = nil
	c.mu.Unlock()
}

func (c *Controller) fail(err error, dropCerts bool) {
	c.mu.Lock()
	if dropCerts {
		c.certs = nil
	}
	c.phase = PhaseError
	c.err = err
	c.mu.Unlock()
}
