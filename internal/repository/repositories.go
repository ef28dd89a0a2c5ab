package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Investor     InvestorRepository
	Installment  InstallmentRepository
	Rule         RuleRepository
	Department   DepartmentRepository
	Doctor       DoctorRepository
	Blog         BlogRepository
	HeroSection  HeroSectionRepository
	Notification NotificationRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Investor:     NewInvestorRepository(db),
		Installment:  NewInstallmentRepository(db),
		Rule:         NewRuleRepository(db),
		Department:   NewDepartmentRepository(db),
		Doctor:       NewDoctorRepository(db),
		Blog:         NewBlogRepository(db),
		HeroSection:  NewHeroSectionRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
