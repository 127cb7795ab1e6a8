package repository

import (
	"github.com/workstream/task-assignment-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindVisibleByID finds a user by ID within a visibility scope. Users
// outside the scope surface as gorm.ErrRecordNotFound.
func (r *GormUserRepository) FindVisibleByID(id uint64, scope UserScope) (*models.User, error) {
	var user models.User
	if err := applyUserScope(r.db, scope).First(&user, "users.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether another user already holds the
// username or email. excludeID skips the user's own record on updates.
func (r *GormUserRepository) ExistsByUsernameOrEmail(username, email string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Where("id <> ?", excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves the users within a visibility scope
func (r *GormUserRepository) List(scope UserScope) ([]models.User, error) {
	var users []models.User
	if err := applyUserScope(r.db, scope).Order("users.id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update persists a modified user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete hard deletes a user
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Delete(&models.User{}, id).Error
}

// applyUserScope narrows a query to the users visible to the actor
func applyUserScope(db *gorm.DB, scope UserScope) *gorm.DB {
	switch scope.Visibility {
	case UserVisibilityAllOthers:
		return db.Where("users.id <> ?", scope.UserID)
	case UserVisibilityCreated:
		return db.Where("users.parent_id = ?", scope.UserID)
	default:
		return db.Where("users.id = ?", scope.UserID)
	}
}
