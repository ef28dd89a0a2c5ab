package models

import (
	"time"
)

// Department represents a clinical department shown on the site
type Department struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description *string    `gorm:"type:text" json:"description"`
	IconImage   *string    `gorm:"size:500" json:"icon_image"`
	SortOrder   int        `gorm:"default:0" json:"sort_order"`
	Status      string     `gorm:"default:active;index" json:"status"`
	DiscardedAt *time.Time `gorm:"index" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Doctors []Doctor `gorm:"foreignKey:DepartmentID" json:"doctors,omitempty"`
}

func (Department) TableName() string {
	return "departments"
}

// Doctor represents a physician profile
type Doctor struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	DepartmentID   *uint      `gorm:"index" json:"department_id"`
	Name           string     `gorm:"not null" json:"name"`
	Designation    *string    `json:"designation"`
	Qualifications *string    `gorm:"type:text" json:"qualifications"`
	Bio            *string    `gorm:"type:text" json:"bio"`
	Photo          *string    `gorm:"size:500" json:"photo"`
	PhotoThumb     *string    `gorm:"size:500" json:"photo_thumb"`
	ChamberHours   *string    `json:"chamber_hours"`
	Phone          *string    `json:"phone"`
	Email          *string    `json:"email"`
	SortOrder      int        `gorm:"default:0" json:"sort_order"`
	Status         string     `gorm:"default:active;index" json:"status"`
	DiscardedAt    *time.Time `gorm:"index" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Blog represents a news/blog article
type Blog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt     *string    `gorm:"type:text" json:"excerpt"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	CoverImage  *string    `gorm:"size:500" json:"cover_image"`
	AuthorID    *uint      `gorm:"index" json:"author_id"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	Status      string     `gorm:"default:active;index" json:"status"`
	DiscardedAt *time.Time `gorm:"index" json:"-"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Blog) TableName() string {
	return "blogs"
}

// IsPublished returns true if the article is visible to the public site
func (b *Blog) IsPublished() bool {
	return b.Status == StatusActive && b.PublishedAt != nil && !b.PublishedAt.After(time.Now())
}

// HeroSection is the single-row homepage banner configuration. The table
// holds at most one logical record, managed through an explicit
// transactional upsert rather than first-or-create.
type HeroSection struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Heading         string    `gorm:"not null" json:"heading"`
	Subheading      *string   `gorm:"type:text" json:"subheading"`
	CTALabel        *string   `gorm:"column:cta_label" json:"cta_label"`
	CTALink         *string   `gorm:"column:cta_link;size:500" json:"cta_link"`
	BackgroundImage *string   `gorm:"size:500" json:"background_image"`
	UpdatedByID     *uint     `json:"updated_by_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (HeroSection) TableName() string {
	return "hero_sections"
}
