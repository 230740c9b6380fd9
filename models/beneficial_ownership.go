package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BeneficialOwnership представляет долю владения физического или юридического лица
type BeneficialOwnership struct {
	UUID        uuid.UUID `gorm:"column:uuid;type:uuid;primaryKey"`
	AffiliateID uint      `gorm:"column:affiliate_id;not null;index"`
	Affiliate   Affiliate `gorm:"foreignKey:AffiliateID;constraint:OnDelete:CASCADE"`

	// Владелец задается ровно одной из двух ссылок
	OwnerIndividualUUID *uuid.UUID  `gorm:"column:owner_individual_uuid;type:uuid"`
	OwnerIndividual     *Individual `gorm:"foreignKey:OwnerIndividualUUID;constraint:OnDelete:CASCADE"`
	OwnerBusinessUUID   *uuid.UUID  `gorm:"column:owner_business_uuid;type:uuid"`
	OwnerBusiness       *Business   `gorm:"foreignKey:OwnerBusinessUUID;constraint:OnDelete:CASCADE"`

	OwnershipPercentage decimal.Decimal `gorm:"column:ownership_percentage;type:decimal(5,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (BeneficialOwnership) TableName() string {
	return "beneficial_ownerships"
}

// BeforeCreate хук, который присваивает UUID, если он не задан
func (o *BeneficialOwnership) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	return nil
}
