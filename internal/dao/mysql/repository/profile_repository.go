package repository

import (
	"live_support_server/internal/model"

	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建访客资料 Repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindByUuid 根据 UUID 查找访客资料
func (r *profileRepository) FindByUuid(uuid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.Where("uuid = ?", uuid).First(&profile).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询访客资料 uuid=%s", uuid)
	}
	return &profile, nil
}

// Create 创建访客资料
func (r *profileRepository) Create(profile *model.UserProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return wrapDBError(err, "创建访客资料")
	}
	return nil
}
