package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JointlyReported представляет способ подачи личной отчетности
type JointlyReported string

const (
	JointlyReportedJointly JointlyReported = "JOINTLY"
	JointlyReportedSole    JointlyReported = "SOLE"
)

// Individual представляет физическое лицо, принадлежащее аффилированному лицу
type Individual struct {
	UUID        uuid.UUID `gorm:"column:uuid;type:uuid;primaryKey"`
	AffiliateID uint      `gorm:"column:affiliate_id;not null;index"`
	Affiliate   Affiliate `gorm:"foreignKey:AffiliateID;constraint:OnDelete:CASCADE"`

	FirstName  string  `gorm:"column:first_name;not null;size:50"`
	MiddleName *string `gorm:"column:middle_name;size:50"`
	LastName   string  `gorm:"column:last_name;not null;size:50"`

	// SSN хранится только в зашифрованном виде; HMAC используется для поиска по равенству
	SSNEncrypted string     `gorm:"column:ssn_encrypted;not null"`
	SSNHMAC      string     `gorm:"column:ssn_hmac;not null;index"`
	DateOfBirth  *time.Time `gorm:"column:date_of_birth"`

	Address1 string  `gorm:"column:address_1;size:100"`
	Address2 *string `gorm:"column:address_2;size:100"`
	City     string  `gorm:"column:city;size:50"`
	State    string  `gorm:"column:state;size:50"`
	ZipCode  string  `gorm:"column:zip_code;size:10"`
	County   string  `gorm:"column:county;size:50"`
	Country  string  `gorm:"column:country;size:50"`
	Email    string  `gorm:"column:email;size:254"`

	JointlyReported     JointlyReported `gorm:"column:jointly_reported;type:varchar(7);not null;default:'SOLE'"`
	JointlyReportedCode *string         `gorm:"column:jointly_reported_code;size:20"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Individual) TableName() string {
	return "individuals"
}

// BeforeCreate хук, который присваивает UUID, если он не задан
func (i *Individual) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == uuid.Nil {
		i.UUID = uuid.New()
	}
	return nil
}
