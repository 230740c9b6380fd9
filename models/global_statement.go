package models

import (
	"time"

	"github.com/google/uuid"
)

// GlobalStatement группирует периодические финансовые отчеты одной связки
// аффилированное лицо + предприятие + физическое лицо
type GlobalStatement struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	AffiliateID    uint       `gorm:"column:affiliate_id;not null;index"`
	Affiliate      Affiliate  `gorm:"foreignKey:AffiliateID;constraint:OnDelete:CASCADE"`
	BusinessUUID   uuid.UUID  `gorm:"column:business_uuid;type:uuid;not null;index"`
	Business       Business   `gorm:"foreignKey:BusinessUUID;constraint:OnDelete:CASCADE"`
	IndividualUUID uuid.UUID  `gorm:"column:individual_uuid;type:uuid;not null"`
	Individual     Individual `gorm:"foreignKey:IndividualUUID;constraint:OnDelete:CASCADE"`

	IncomeStatements []IncomeStatement `gorm:"foreignKey:GlobalStatementID;constraint:OnDelete:CASCADE"`
	BalanceSheets    []BalanceSheet    `gorm:"foreignKey:GlobalStatementID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (GlobalStatement) TableName() string {
	return "global_statements"
}
