package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessType представляет организационно-правовую форму предприятия
type BusinessType string

const (
	BusinessTypeCCorp        BusinessType = "C-CORP"
	BusinessTypeSCorp        BusinessType = "S-CORP"
	BusinessTypeLLC          BusinessType = "LLC"
	BusinessTypePartnership  BusinessType = "PARTNERSHIP"
	BusinessTypeSoleProp     BusinessType = "SOLE PROP."
	BusinessTypeNonProfit    BusinessType = "NON-PROFIT"
	BusinessTypeGovernmental BusinessType = "GOVERNMENT"
)

// Business представляет юридическое лицо, принадлежащее аффилированному лицу
type Business struct {
	UUID        uuid.UUID `gorm:"column:uuid;type:uuid;primaryKey"`
	AffiliateID uint      `gorm:"column:affiliate_id;not null;index"`
	Affiliate   Affiliate `gorm:"foreignKey:AffiliateID;constraint:OnDelete:CASCADE"`

	EntityName   string       `gorm:"column:entity_name;not null;size:100"`
	BusinessType BusinessType `gorm:"column:business_type;type:varchar(50);not null"`

	// EIN хранится только в зашифрованном виде; HMAC используется для поиска по равенству
	EINEncrypted string `gorm:"column:ein_encrypted;not null"`
	EINHMAC      string `gorm:"column:ein_hmac;not null;index"`

	StateOfFormation string     `gorm:"column:state_of_formation;size:50"`
	DateOfFormation  *time.Time `gorm:"column:date_of_formation"`

	Address1 string  `gorm:"column:address_1;size:100"`
	Address2 *string `gorm:"column:address_2;size:100"`
	City     string  `gorm:"column:city;size:50"`
	State    string  `gorm:"column:state;size:50"`
	ZipCode  string  `gorm:"column:zip_code;size:10"`
	County   string  `gorm:"column:county;size:50"`
	Country  string  `gorm:"column:country;size:50"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Business) TableName() string {
	return "businesses"
}

// BeforeCreate хук, который присваивает UUID, если он не задан
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	return nil
}
