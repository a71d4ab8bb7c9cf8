package contact

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/WeSplit-io/WeSplit-Backend/services/address"
	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/metrics"
)

// ContactStore is what the service needs from persistence.
type ContactStore interface {
	Insert(ctx context.Context, c *Contact) (*Contact, error)
	GetByID(ctx context.Context, ownerID, contactID int64) (*Contact, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Contact, error)
	Search(ctx context.Context, ownerID int64, term string) ([]Contact, error)
	SetFavorite(ctx context.Context, ownerID, contactID int64, favorite bool) (*Contact, error)
	Delete(ctx context.Context, ownerID, contactID int64) error
}

type ContactService struct {
	repo   ContactStore
	guards *guard.ActionGuard
	logger *logging.Logger

	// Per-owner search generations. A search captures its token at start
	// and discards its own result when a newer search has begun since.
	generations sync.Map
}

func NewContactService(repo ContactStore, guards *guard.ActionGuard, logger *logging.Logger) *ContactService {
	return &ContactService{
		repo:   repo,
		guards: guards,
		logger: logger,
	}
}

// AddContact validates the address, then inserts under the contact-add
// guard so a double tap lands exactly one row. The unique constraint on
// (owner_id, wallet_address) backstops duplicates from other devices.
func (s *ContactService) AddContact(ctx context.Context, ownerID int64, name, walletAddress, email string) (*Contact, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if cls := address.Classify(walletAddress); cls.Status == address.StatusInvalid || cls.Status == address.StatusEmpty {
		return nil, fmt.Errorf("%w: %s", ErrBadAddress, cls.Reason)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = ShortAddress(walletAddress)
	}

	var saved *Contact
	err := s.guards.Do(guard.ContactAddKey(ownerID, walletAddress), func() error {
		var err error
		saved, err = s.repo.Insert(ctx, &Contact{
			OwnerID:       ownerID,
			Name:          name,
			WalletAddress: walletAddress,
			Email:         strings.TrimSpace(email),
		})
		return err
	})
	if err != nil {
		if err == guard.ErrDuplicateAction {
			metrics.RecordGuardRejection("contact-add")
		}
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("Added contact %d for user %d", saved.ID, ownerID))
	return saved, nil
}

// AddContactByAddress serves profile deep links, which carry no name.
func (s *ContactService) AddContactByAddress(ctx context.Context, ownerID int64, walletAddress string) error {
	_, err := s.AddContact(ctx, ownerID, "", walletAddress, "")
	return err
}

func (s *ContactService) ListContacts(ctx context.Context, ownerID int64) ([]Contact, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *ContactService) GetContact(ctx context.Context, ownerID, contactID int64) (*Contact, error) {
	return s.repo.GetByID(ctx, ownerID, contactID)
}

// Search runs the store query under a per-owner generation token. When a
// newer search starts before this one completes, the completion is
// discarded with ErrSearchSuperseded rather than overwriting fresher
// results.
func (s *ContactService) Search(ctx context.Context, ownerID int64, term string) ([]Contact, error) {
	gen := s.generation(ownerID)
	token := gen.Add(1)

	results, err := s.repo.Search(ctx, ownerID, strings.TrimSpace(term))
	if err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}
	if gen.Load() != token {
		return nil, ErrSearchSuperseded
	}

	return results, nil
}

// ToggleFavorite flips the stored flag under the favorite-toggle guard.
func (s *ContactService) ToggleFavorite(ctx context.Context, ownerID, contactID int64) (*Contact, error) {
	var updated *Contact
	err := s.guards.Do(guard.FavoriteToggleKey(contactID), func() error {
		current, err := s.repo.GetByID(ctx, ownerID, contactID)
		if err != nil {
			return err
		}
		updated, err = s.repo.SetFavorite(ctx, ownerID, contactID, !current.Favorite)
		return err
	})
	if err != nil {
		if err == guard.ErrDuplicateAction {
			metrics.RecordGuardRejection("favorite-toggle")
		}
		return nil, err
	}

	return updated, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, ownerID, contactID int64) error {
	return s.repo.Delete(ctx, ownerID, contactID)
}

func (s *ContactService) generation(ownerID int64) *atomic.Int64 {
	v, _ := s.generations.LoadOrStore(ownerID, new(atomic.Int64))
	return v.(*atomic.Int64)
}
