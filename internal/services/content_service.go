package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a title into a URL-safe slug
func slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ContentService manages the public site content: departments, doctors,
// blog articles and the homepage hero section.
type ContentService struct {
	departmentRepo repository.DepartmentRepository
	doctorRepo     repository.DoctorRepository
	blogRepo       repository.BlogRepository
	heroRepo       repository.HeroSectionRepository
	auditSvc       *AuditService
	worker         *jobs.Worker
}

func NewContentService(
	departmentRepo repository.DepartmentRepository,
	doctorRepo repository.DoctorRepository,
	blogRepo repository.BlogRepository,
	heroRepo repository.HeroSectionRepository,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *ContentService {
	return &ContentService{
		departmentRepo: departmentRepo,
		doctorRepo:     doctorRepo,
		blogRepo:       blogRepo,
		heroRepo:       heroRepo,
		auditSvc:       auditSvc,
		worker:         worker,
	}
}

// --- Departments ---

func (s *ContentService) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	department, err := s.departmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return department, nil
}

func (s *ContentService) GetDepartmentBySlug(ctx context.Context, slug string) (*models.Department, error) {
	department, err := s.departmentRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return department, nil
}

func (s *ContentService) ListDepartments(ctx context.Context, query *repository.ListQuery) ([]models.Department, int64, error) {
	return s.departmentRepo.List(ctx, query)
}

func (s *ContentService) CreateDepartment(ctx context.Context, department *models.Department, actorID uint, ip, userAgent string) error {
	if department.Slug == "" {
		department.Slug = s.uniqueDepartmentSlug(ctx, slugify(department.Name))
	}
	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return err
	}
	s.audit(ctx, actorID, "CREATE", "Department", department.ID, department.Name, ip, userAgent)
	return nil
}

func (s *ContentService) UpdateDepartment(ctx context.Context, department *models.Department, actorID uint, ip, userAgent string) error {
	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return err
	}
	s.audit(ctx, actorID, "UPDATE", "Department", department.ID, department.Name, ip, userAgent)
	return nil
}

func (s *ContentService) DeleteDepartment(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	if _, err := s.GetDepartment(ctx, id); err != nil {
		return err
	}
	if err := s.departmentRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actorID, "DELETE", "Department", id, "", ip, userAgent)
	return nil
}

// uniqueDepartmentSlug suffixes the slug until no live department claims it
func (s *ContentService) uniqueDepartmentSlug(ctx context.Context, base string) string {
	slug := base
	for i := 2; ; i++ {
		_, err := s.departmentRepo.FindBySlug(ctx, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug
		}
		if err != nil {
			return fmt.Sprintf("%s-%d", base, time.Now().Unix())
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// --- Doctors ---

func (s *ContentService) GetDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	doctor, err := s.doctorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doctor, nil
}

func (s *ContentService) ListDoctors(ctx context.Context, query *repository.ListQuery) ([]models.Doctor, int64, error) {
	return s.doctorRepo.List(ctx, query)
}

func (s *ContentService) CreateDoctor(ctx context.Context, doctor *models.Doctor, actorID uint, ip, userAgent string) error {
	if doctor.DepartmentID != nil {
		if _, err := s.GetDepartment(ctx, *doctor.DepartmentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				ve := NewValidationError()
				ve.Add("department_id", "department does not exist")
				return ve
			}
			return err
		}
	}
	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return err
	}
	s.audit(ctx, actorID, "CREATE", "Doctor", doctor.ID, doctor.Name, ip, userAgent)
	return nil
}

func (s *ContentService) UpdateDoctor(ctx context.Context, doctor *models.Doctor, actorID uint, ip, userAgent string) error {
	if doctor.DepartmentID != nil {
		if _, err := s.GetDepartment(ctx, *doctor.DepartmentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				ve := NewValidationError()
				ve.Add("department_id", "department does not exist")
				return ve
			}
			return err
		}
	}
	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return err
	}
	s.audit(ctx, actorID, "UPDATE", "Doctor", doctor.ID, doctor.Name, ip, userAgent)
	return nil
}

func (s *ContentService) DeleteDoctor(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	if _, err := s.GetDoctor(ctx, id); err != nil {
		return err
	}
	if err := s.doctorRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actorID, "DELETE", "Doctor", id, "", ip, userAgent)
	return nil
}

// --- Blog articles ---

func (s *ContentService) GetBlog(ctx context.Context, id uint) (*models.Blog, error) {
	blog, err := s.blogRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return blog, nil
}

func (s *ContentService) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	blog, err := s.blogRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return blog, nil
}

func (s *ContentService) ListBlogs(ctx context.Context, query *repository.ListQuery) ([]models.Blog, int64, error) {
	return s.blogRepo.List(ctx, query)
}

func (s *ContentService) CreateBlog(ctx context.Context, blog *models.Blog, actorID uint, ip, userAgent string) error {
	if blog.Slug == "" {
		blog.Slug = s.uniqueBlogSlug(ctx, slugify(blog.Title))
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return err
	}
	s.audit(ctx, actorID, "CREATE", "Blog", blog.ID, blog.Title, ip, userAgent)
	return nil
}

func (s *ContentService) UpdateBlog(ctx context.Context, blog *models.Blog, actorID uint, ip, userAgent string) error {
	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return err
	}
	s.audit(ctx, actorID, "UPDATE", "Blog", blog.ID, blog.Title, ip, userAgent)
	return nil
}

func (s *ContentService) DeleteBlog(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	if _, err := s.GetBlog(ctx, id); err != nil {
		return err
	}
	if err := s.blogRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actorID, "DELETE", "Blog", id, "", ip, userAgent)
	return nil
}

func (s *ContentService) uniqueBlogSlug(ctx context.Context, base string) string {
	slug := base
	for i := 2; ; i++ {
		_, err := s.blogRepo.FindBySlug(ctx, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug
		}
		if err != nil {
			return fmt.Sprintf("%s-%d", base, time.Now().Unix())
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// --- Hero section ---

func (s *ContentService) GetHeroSection(ctx context.Context) (*models.HeroSection, error) {
	hero, err := s.heroRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return hero, nil
}

// UpsertHeroSection replaces the single homepage banner row. Concurrent
// writers serialize on a row lock inside the repository transaction.
func (s *ContentService) UpsertHeroSection(ctx context.Context, hero *models.HeroSection, actorID uint, ip, userAgent string) error {
	if strings.TrimSpace(hero.Heading) == "" {
		ve := NewValidationError()
		ve.Add("heading", "heading is required")
		return ve
	}
	if actorID != 0 {
		hero.UpdatedByID = &actorID
	}
	if err := s.heroRepo.Upsert(ctx, hero); err != nil {
		return err
	}
	s.audit(ctx, actorID, "UPSERT", "HeroSection", hero.ID, hero.Heading, ip, userAgent)
	return nil
}

func (s *ContentService) audit(ctx context.Context, actorID uint, action, entity string, entityID uint, details, ip, userAgent string) {
	if s.auditSvc == nil || actorID == 0 {
		return
	}
	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		return s.auditSvc.Log(jobCtx, actorID, action, entity, entityID, details, ip, userAgent)
	})
}
