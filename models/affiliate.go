package models

import (
	"time"
)

// AffiliateType представляет тип аффилированного лица
type AffiliateType string

const (
	AffiliateTypeIndividual AffiliateType = "INDIVIDUAL"
	AffiliateTypeBusiness   AffiliateType = "BUSINESS"
)

// Affiliate представляет аффилированное лицо (верхнеуровневую сторону сделки)
type Affiliate struct {
	ID            uint          `gorm:"primaryKey;autoIncrement"`
	AffiliateCode string        `gorm:"column:affiliate_code;unique;not null;size:20"`
	AffiliateType AffiliateType `gorm:"column:affiliate_type;type:varchar(10);not null"`
	Individuals   []Individual  `gorm:"foreignKey:AffiliateID;constraint:OnDelete:CASCADE"`
	Businesses    []Business    `gorm:"foreignKey:AffiliateID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Affiliate) TableName() string {
	return "affiliates"
}
