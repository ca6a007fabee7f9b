package repositories

import (
	"context"
	"time"

	"printfleet/internal/database"
	"printfleet/internal/logger"
	. "printfleet/internal/models"

	"gorm.io/gorm"
)

const userCacheTTL = 15 * time.Minute

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*User, error)
	GetBySubjectID(ctx context.Context, tx *gorm.DB, subjectID string) (*User, error)
	InvalidateSubject(ctx context.Context, subjectID string)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func userCacheKey(subjectID string) string {
	return "user:subject:" + subjectID
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*User, error) {
	var user User
	if err := tx.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBySubjectID resolves the identity provider subject claim to a local
// user. Every authenticated request passes through here, so hits are served
// from the cache.
func (r *userRepository) GetBySubjectID(
	ctx context.Context,
	tx *gorm.DB,
	subjectID string,
) (*User, error) {
	log := r.log.Function("GetBySubjectID")

	var user User
	found, err := database.NewCacheBuilder(r.db.Cache.General, userCacheKey(subjectID)).
		WithContext(ctx).
		Get(&user)
	if err != nil {
		log.Warn("user cache read failed", "subjectID", subjectID, "error", err)
	}
	if found {
		return &user, nil
	}

	err = tx.WithContext(ctx).First(&user, "subject_id = ?", subjectID).Error
	if err != nil {
		return nil, err
	}

	cacheErr := database.NewCacheBuilder(r.db.Cache.General, userCacheKey(subjectID)).
		WithContext(ctx).
		WithStruct(user).
		WithTTL(userCacheTTL).
		Set()
	if cacheErr != nil {
		log.Warn("user cache write failed", "subjectID", subjectID, "error", cacheErr)
	}

	return &user, nil
}

func (r *userRepository) InvalidateSubject(ctx context.Context, subjectID string) {
	err := database.NewCacheBuilder(r.db.Cache.General, userCacheKey(subjectID)).
		WithContext(ctx).
		Delete()
	if err != nil {
		r.log.Function("InvalidateSubject").
			Warn("user cache invalidation failed", "subjectID", subjectID, "error", err)
	}
}
