package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hotel-booking/models"
)

var (
	ErrDraftNotFound  = errors.New("booking draft not found")
	ErrDuplicateTxRef = errors.New("transaction reference already used")
	ErrDraftClaimed   = errors.New("booking draft is not in a claimable state")
)

// DraftStore keeps booking drafts between payment initiation and
// confirmation, keyed by transaction reference.
type DraftStore interface {
	Create(ctx context.Context, draft *models.BookingDraft) error
	FindByTxRef(ctx context.Context, txRef string) (*models.BookingDraft, error)
	UpdateStatus(ctx context.Context, txRef, status, transactionID, reason string) error
	// Claim moves a draft to status to, but only while its status is one of
	// from. It returns ErrDraftClaimed when the draft is in another state.
	Claim(ctx context.Context, txRef, to string, from ...string) error
	Delete(ctx context.Context, txRef string) error
}

func encodeDraft(d models.DraftPayload) (datatypes.JSON, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode booking draft: %w", err)
	}
	return datatypes.JSON(b), nil
}

// GormDraftStore is the MySQL backed DraftStore.
type GormDraftStore struct {
	DB *gorm.DB
}

func NewGormDraftStore(db *gorm.DB) *GormDraftStore {
	return &GormDraftStore{DB: db}
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (s *GormDraftStore) Create(ctx context.Context, draft *models.BookingDraft) error {
	if err := s.DB.WithContext(ctx).Create(draft).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateTxRef
		}
		return fmt.Errorf("failed to create booking draft: %w", err)
	}
	return nil
}

func (s *GormDraftStore) FindByTxRef(ctx context.Context, txRef string) (*models.BookingDraft, error) {
	var draft models.BookingDraft
	if err := s.DB.WithContext(ctx).Where("tx_ref = ?", txRef).First(&draft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to find booking draft: %w", err)
	}
	return &draft, nil
}

func (s *GormDraftStore) UpdateStatus(ctx context.Context, txRef, status, transactionID, reason string) error {
	res := s.DB.WithContext(ctx).Model(&models.BookingDraft{}).
		Where("tx_ref = ?", txRef).
		Updates(map[string]any{
			"status":         status,
			"transaction_id": transactionID,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update booking draft: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (s *GormDraftStore) Claim(ctx context.Context, txRef, to string, from ...string) error {
	res := s.DB.WithContext(ctx).Model(&models.BookingDraft{}).
		Where("tx_ref = ? AND status IN ?", txRef, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to claim booking draft: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := s.FindByTxRef(ctx, txRef); err != nil {
		return err
	}
	return ErrDraftClaimed
}

func (s *GormDraftStore) Delete(ctx context.Context, txRef string) error {
	res := s.DB.WithContext(ctx).Where("tx_ref = ?", txRef).Delete(&models.BookingDraft{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking draft: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// MemoryDraftStore keeps drafts in process memory. Used when no database is
// configured and in tests.
type MemoryDraftStore struct {
	mu     sync.Mutex
	nextID uint
	drafts map[string]models.BookingDraft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]models.BookingDraft)}
}

func (s *MemoryDraftStore) Create(_ context.Context, draft *models.BookingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.drafts[draft.TxRef]; exists {
		return ErrDuplicateTxRef
	}
	s.nextID++
	now := time.Now()
	draft.ID = s.nextID
	draft.CreatedAt = now
	draft.UpdatedAt = now
	s.drafts[draft.TxRef] = *draft
	return nil
}

func (s *MemoryDraftStore) FindByTxRef(_ context.Context, txRef string) (*models.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[txRef]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return &draft, nil
}

func (s *MemoryDraftStore) UpdateStatus(_ context.Context, txRef, status, transactionID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[txRef]
	if !ok {
		return ErrDraftNotFound
	}
	draft.Status = status
	draft.TransactionID = transactionID
	draft.FailureReason = reason
	draft.UpdatedAt = time.Now()
	s.drafts[txRef] = draft
	return nil
}

func (s *MemoryDraftStore) Claim(_ context.Context, txRef, to string, from ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[txRef]
	if !ok {
		return ErrDraftNotFound
	}
	if !slices.Contains(from, draft.Status) {
		return ErrDraftClaimed
	}
	draft.Status = to
	draft.UpdatedAt = time.Now()
	s.drafts[txRef] = draft
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[txRef]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, txRef)
	return nil
}
