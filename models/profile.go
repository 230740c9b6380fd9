package models

import (
	"time"

	"github.com/google/uuid"
)

// IndividualProfile представляет андеррайтинговый профиль физического лица
type IndividualProfile struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	IndividualUUID uuid.UUID  `gorm:"column:individual_uuid;type:uuid;unique;not null"`
	Individual     Individual `gorm:"foreignKey:IndividualUUID;constraint:OnDelete:CASCADE"`

	BackgroundAndHistory *string `gorm:"column:background_and_history;type:text"`
	FinancialAnalysis    *string `gorm:"column:financial_analysis;type:text"`
	CreditHistory        *string `gorm:"column:credit_history;type:text"`
	ManagementExperience *string `gorm:"column:management_experience;type:text"`
	RiskAssessment       *string `gorm:"column:risk_assessment;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (IndividualProfile) TableName() string {
	return "individual_profiles"
}

// JointIndividualProfile представляет общий профиль для лиц,
// отчитывающихся совместно (анализируются как единое целое)
type JointIndividualProfile struct {
	ID                  uint   `gorm:"primaryKey;autoIncrement"`
	JointlyReportedCode string `gorm:"column:jointly_reported_code;unique;not null;size:20"`

	BackgroundAndHistory *string `gorm:"column:background_and_history;type:text"`
	FinancialAnalysis    *string `gorm:"column:financial_analysis;type:text"`
	CreditHistory        *string `gorm:"column:credit_history;type:text"`
	ManagementExperience *string `gorm:"column:management_experience;type:text"`
	RiskAssessment       *string `gorm:"column:risk_assessment;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (JointIndividualProfile) TableName() string {
	return "joint_individual_profiles"
}

// BusinessProfile представляет андеррайтинговый профиль предприятия
type BusinessProfile struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	BusinessUUID uuid.UUID `gorm:"column:business_uuid;type:uuid;unique;not null"`
	Business     Business  `gorm:"foreignKey:BusinessUUID;constraint:OnDelete:CASCADE"`

	BackgroundAndHistory *string `gorm:"column:background_and_history;type:text"`
	FinancialAnalysis    *string `gorm:"column:financial_analysis;type:text"`
	CreditHistory        *string `gorm:"column:credit_history;type:text"`
	MarketOverview       *string `gorm:"column:market_overview;type:text"`
	CompetitiveLandscape *string `gorm:"column:competitive_landscape;type:text"`
	RiskAssessment       *string `gorm:"column:risk_assessment;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (BusinessProfile) TableName() string {
	return "business_profiles"
}
