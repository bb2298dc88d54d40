package store

import (
	"context"
	"errors"

	"votebox/internal/apperr"
	"votebox/internal/models"

	"gorm.io/gorm"
)

// GormUserStore is the postgres-backed UserStore. It relies on gorm's error
// translation (gorm.ErrDuplicatedKey) being enabled on the handle.
type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.E(apperr.KindConflict, "User with that username already exists")
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "create user", err)
	}
	return nil
}

func (s *GormUserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	return userResult(&user, err)
}

func (s *GormUserStore) ActiveByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&user).Error
	return userResult(&user, err)
}

func (s *GormUserStore) ActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ? AND deleted = ?", username, false).First(&user).Error
	return userResult(&user, err)
}

func (s *GormUserStore) ByUsernameAnyState(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return userResult(&user, err)
}

func (s *GormUserStore) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("deleted = ?", false).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, "list users", err)
	}
	return users, nil
}

func (s *GormUserStore) ClaimVote(ctx context.Context, userID, optionID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND deleted = ? AND voted_for IS NULL", userID, false).
		Update("voted_for", optionID)
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindStoreUnavailable, "claim vote", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormUserStore) ReleaseVote(ctx context.Context, userID, optionID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND voted_for = ?", userID, optionID).
		Update("voted_for", nil)
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindStoreUnavailable, "release vote", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormUserStore) MarkDeleted(ctx context.Context, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND deleted = ?", userID, false).
		Update("deleted", true)
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindStoreUnavailable, "delete user", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormUserStore) ClearVotedFor(ctx context.Context, optionID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("voted_for = ?", optionID).
		Update("voted_for", nil)
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.KindStoreUnavailable, "reset voters", res.Error)
	}
	return res.RowsAffected, nil
}

// GormOptionStore is the postgres-backed OptionStore.
type GormOptionStore struct {
	db *gorm.DB
}

func NewGormOptionStore(db *gorm.DB) *GormOptionStore {
	return &GormOptionStore{db: db}
}

func (s *GormOptionStore) Create(ctx context.Context, option *models.Option) error {
	if err := s.db.WithContext(ctx).Create(option).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.E(apperr.KindConflict, "Voting with that name already exists")
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "create option", err)
	}
	return nil
}

func (s *GormOptionStore) ByID(ctx context.Context, id uint) (*models.Option, error) {
	var option models.Option
	err := s.db.WithContext(ctx).First(&option, id).Error
	return optionResult(&option, err)
}

func (s *GormOptionStore) ActiveByID(ctx context.Context, id uint) (*models.Option, error) {
	var option models.Option
	err := s.db.WithContext(ctx).Where("id = ? AND deleted = ?", id, false).First(&option).Error
	return optionResult(&option, err)
}

func (s *GormOptionStore) ActiveByName(ctx context.Context, name string) (*models.Option, error) {
	var option models.Option
	err := s.db.WithContext(ctx).Where("name = ? AND deleted = ?", name, false).First(&option).Error
	return optionResult(&option, err)
}

func (s *GormOptionStore) ListActive(ctx context.Context) ([]models.Option, error) {
	var options []models.Option
	if err := s.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("vote_count ASC, id ASC").
		Find(&options).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, "list options", err)
	}
	return options, nil
}

func (s *GormOptionStore) AddVotes(ctx context.Context, id uint, delta int, activeOnly bool) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Option{}).Where("id = ?", id)
	if activeOnly {
		q = q.Where("deleted = ?", false)
	}
	if delta < 0 {
		// Never drive the counter negative.
		q = q.Where("vote_count >= ?", -delta)
	}
	res := q.UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta))
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindStoreUnavailable, "update vote count", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormOptionStore) MarkDeleted(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Option{}).
		Where("id = ? AND deleted = ?", id, false).
		Update("deleted", true)
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindStoreUnavailable, "delete option", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func userResult(user *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, "load user", err)
	}
	return user, nil
}

func optionResult(option *models.Option, err error) (*models.Option, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "option not found")
		}
		return nil, apperr.Wrap(apperr.KindStoreUnavailable, "load option", err)
	}
	return option, nil
}
