package repository

import (
	"context"
	"errors"
	"time"

	"github.com/medicore/medicore-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Department, error)
	FindBySlug(ctx context.Context, slug string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Department, int64, error)
}

// departmentSortColumns maps sort keys accepted on department lists to real columns
var departmentSortColumns = map[string]string{
	"name":       "name",
	"sort_order": "sort_order",
	"created_at": "created_at",
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) FindByID(ctx context.Context, id uint) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		Preload("Doctors", func(db *gorm.DB) *gorm.DB {
			return db.Where("discarded_at IS NULL").Order("sort_order ASC")
		}).
		First(&department, id).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) FindBySlug(ctx context.Context, slug string) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).
		Where("slug = ? AND discarded_at IS NULL", slug).
		First(&department).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) Create(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *departmentRepository) Update(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

func (r *departmentRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Department{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *departmentRepository) List(ctx context.Context, query *ListQuery) ([]models.Department, int64, error) {
	var departments []models.Department
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Department{}).Where("discarded_at IS NULL")

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, departmentSortColumns, "sort_order ASC, name ASC")

	err := db.Find(&departments).Error
	return departments, total, err
}

// DoctorRepository defines the interface for doctor data access
type DoctorRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Doctor, error)
	Create(ctx context.Context, doctor *models.Doctor) error
	Update(ctx context.Context, doctor *models.Doctor) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Doctor, int64, error)
}

// doctorSortColumns maps sort keys accepted on doctor lists to
// table-qualified columns, since the list query preloads the department
var doctorSortColumns = map[string]string{
	"name":       "doctors.name",
	"sort_order": "doctors.sort_order",
	"created_at": "doctors.created_at",
}

type doctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *gorm.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) FindByID(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).
		Where("doctors.discarded_at IS NULL").
		Preload("Department").
		First(&doctor, id).Error
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

func (r *doctorRepository) Update(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Save(doctor).Error
}

func (r *doctorRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Doctor{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *doctorRepository) List(ctx context.Context, query *ListQuery) ([]models.Doctor, int64, error) {
	var doctors []models.Doctor
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Doctor{}).Where("doctors.discarded_at IS NULL")

	if status := query.Filters["status"]; status != "" {
		db = db.Where("doctors.status = ?", status)
	}
	if departmentID := query.Filters["department_id"]; departmentID != "" {
		db = db.Where("doctors.department_id = ?", departmentID)
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("doctors.name ILIKE ? OR doctors.designation ILIKE ?", search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, doctorSortColumns, "doctors.sort_order ASC, doctors.name ASC")

	err := db.Preload("Department").Find(&doctors).Error
	return doctors, total, err
}

// BlogRepository defines the interface for blog data access
type BlogRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Blog, error)
	FindBySlug(ctx context.Context, slug string) (*models.Blog, error)
	Create(ctx context.Context, blog *models.Blog) error
	Update(ctx context.Context, blog *models.Blog) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Blog, int64, error)
}

// blogSortColumns maps sort keys accepted on blog lists to real columns
var blogSortColumns = map[string]string{
	"title":        "blogs.title",
	"published_at": "blogs.published_at",
	"created_at":   "blogs.created_at",
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) FindByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).
		Where("blogs.discarded_at IS NULL").
		Preload("Author").
		First(&blog, id).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).
		Where("blogs.slug = ? AND blogs.discarded_at IS NULL", slug).
		Preload("Author").
		First(&blog).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Save(blog).Error
}

func (r *blogRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *blogRepository) List(ctx context.Context, query *ListQuery) ([]models.Blog, int64, error) {
	var blogs []models.Blog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Blog{}).Where("blogs.discarded_at IS NULL")

	if status := query.Filters["status"]; status != "" {
		db = db.Where("blogs.status = ?", status)
	}
	if query.Filters["published"] == "true" {
		db = db.Where("blogs.published_at IS NOT NULL AND blogs.published_at <= ?", time.Now())
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("blogs.title ILIKE ? OR blogs.excerpt ILIKE ?", search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, blogSortColumns, "blogs.created_at DESC")

	err := db.Preload("Author").Find(&blogs).Error
	return blogs, total, err
}

// HeroSectionRepository manages the single-row homepage banner. Get returns
// the row when present; Upsert replaces it atomically.
type HeroSectionRepository interface {
	Get(ctx context.Context) (*models.HeroSection, error)
	Upsert(ctx context.Context, hero *models.HeroSection) error
}

type heroSectionRepository struct {
	db *gorm.DB
}

// NewHeroSectionRepository creates a new hero section repository
func NewHeroSectionRepository(db *gorm.DB) HeroSectionRepository {
	return &heroSectionRepository{db: db}
}

func (r *heroSectionRepository) Get(ctx context.Context) (*models.HeroSection, error) {
	var hero models.HeroSection
	err := r.db.WithContext(ctx).Order("id ASC").First(&hero).Error
	if err != nil {
		return nil, err
	}
	return &hero, nil
}

// Upsert writes the singleton row inside a transaction. The existing row is
// locked before the decision to update or insert, so two concurrent
// first-time writers cannot both create a row.
func (r *heroSectionRepository) Upsert(ctx context.Context, hero *models.HeroSection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.HeroSection
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("id ASC").
			First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(hero).Error
			}
			return err
		}

		hero.ID = existing.ID
		hero.CreatedAt = existing.CreatedAt
		return tx.Save(hero).Error
	})
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error)
	Create(ctx context.Context, notification *models.Notification) error
	Update(ctx context.Context, notification *models.Notification) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id uint) error
}

// notificationSortColumns maps sort keys accepted on notification lists to real columns
var notificationSortColumns = map[string]string{
	"created_at": "created_at",
	"read_at":    "read_at",
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	if query.Filters["unread"] == "true" {
		db = db.Where("read_at IS NULL")
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, notificationSortColumns, "created_at DESC")

	err := db.Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now()).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, id).Error
}
