package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewd/internal/domain/user"
	"reviewd/internal/errs"
	"reviewd/internal/infrastructure/persistence/sqlite/model"
	"reviewd/internal/ports"
)

type UserRepository struct {
	db *gorm.DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (user.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (user.User, error) {
	return r.findOne(ctx, "user_id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, cond string, value string) (user.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return user.User{}, err
	}

	var row model.User
	if err := db.Where(cond, value).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, ports.ErrUserNotFound
		}
		return user.User{}, errs.Wrap(err, "query user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return user.User{}, err
	}

	row := model.User{
		UserID:         u.ID,
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		CreatedAt:      formatTime(u.CreatedAt),
	}
	if row.UserID == "" {
		row.UserID = uuid.NewString()
	}

	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ports.ErrDuplicateUser
		}
		return user.User{}, errs.Wrap(err, "insert user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return user.User{}, err
	}

	updates := map[string]any{
		"username":        u.Username,
		"email":           u.Email,
		"hashed_password": u.HashedPassword,
		"is_active":       u.IsActive,
	}

	result := db.Model(&model.User{}).Where("user_id = ?", u.ID).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return user.User{}, ports.ErrDuplicateUser
		}
		return user.User{}, errs.Wrap(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return user.User{}, ports.ErrUserNotFound
	}

	return r.FindByID(ctx, u.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	result := db.Where("user_id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "delete user")
	}
	return result.RowsAffected > 0, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
