package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseRepository defines decoupled operations for course catalogue persistence.
type CourseRepository interface {
	Put(ctx context.Context, c CourseRecord) error
	GetByID(ctx context.Context, id int) (*CourseRecord, error)
	GetBySlug(ctx context.Context, slug string) (*CourseRecord, error)
	List(ctx context.Context) ([]CourseRecord, error)
	SearchByTitle(ctx context.Context, titleSubstr string) ([]CourseRecord, error)
	Clear(ctx context.Context) error
}

// CredentialRepository defines decoupled operations for credential persistence.
type CredentialRepository interface {
	Get(ctx context.Context) (*Credential, error)
	Upsert(ctx context.Context, cred *Credential) error
	Delete(ctx context.Context) error
}

// gormCourseRepo is a GORM-backed implementation of CourseRepository.
// Use constructor NewCourseRepository to obtain an instance.
type gormCourseRepo struct{ db *gorm.DB }

// gormCredentialRepo is a GORM-backed implementation of CredentialRepository.
// Use constructor NewCredentialRepository to obtain an instance.
type gormCredentialRepo struct{ db *gorm.DB }

// NewCourseRepository creates a CourseRepository. Accepts *gorm.DB to avoid global access.
func NewCourseRepository(db *gorm.DB) CourseRepository { return &gormCourseRepo{db: db} }

// NewCredentialRepository creates a CredentialRepository. Accepts *gorm.DB to avoid global access.
func NewCredentialRepository(db *gorm.DB) CredentialRepository { return &gormCredentialRepo{db: db} }

func (r *gormCourseRepo) Put(ctx context.Context, c CourseRecord) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&c).Error
}

func (r *gormCourseRepo) GetByID(ctx context.Context, id int) (*CourseRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var course CourseRecord
	err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *gormCourseRepo) GetBySlug(ctx context.Context, slug string) (*CourseRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var course CourseRecord
	err := r.db.WithContext(ctx).First(&course, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *gormCourseRepo) List(ctx context.Context) ([]CourseRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var courses []CourseRecord
	if err := r.db.WithContext(ctx).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *gormCourseRepo) SearchByTitle(ctx context.Context, titleSubstr string) ([]CourseRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var courses []CourseRecord
	if err := r.db.WithContext(ctx).Where("title LIKE ?", "%"+titleSubstr+"%").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *gormCourseRepo) Clear(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&CourseRecord{}).Error
}

func (r *gormCredentialRepo) Get(ctx context.Context) (*Credential, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var cred Credential
	err := r.db.WithContext(ctx).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *gormCredentialRepo) Upsert(ctx context.Context, cred *Credential) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	cred.ID = 1
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at"}),
	}).Create(cred).Error
}

func (r *gormCredentialRepo) Delete(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Credential{}).Error
}
