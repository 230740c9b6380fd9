package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanProgram представляет кредитную программу
type LoanProgram string

const (
	LoanProgramConsumer   LoanProgram = "CONSUMER"
	LoanProgramCommercial LoanProgram = "COMMERCIAL"
	LoanProgramSBA        LoanProgram = "SBA"
	LoanProgramUSDA       LoanProgram = "USDA"
)

// LoanType представляет тип кредитного продукта
type LoanType string

const (
	LoanTypeTerm         LoanType = "TERM"
	LoanTypeRevolving    LoanType = "REVOLVING"
	LoanTypeNonRevolving LoanType = "NONREVOLVING"
	LoanTypeConstruction LoanType = "CONSTRUCTION"
	LoanTypeMaster       LoanType = "MASTER"
)

// ConversionType представляет порядок конверсии строительной кредитной линии
type ConversionType string

const (
	ConversionTypePermanent       ConversionType = "PERMANENT"
	ConversionTypeDueUponMaturity ConversionType = "DUE_UPON_MATURITY"
)

// InterestRateType представляет тип процентной ставки
type InterestRateType string

const (
	InterestRateTypeVariable InterestRateType = "VARIABLE"
	InterestRateTypeFixed    InterestRateType = "FIXED"
)

// InterestRateApplied представляет базу применения ставки
type InterestRateApplied string

const (
	InterestRateAppliedFull         InterestRateApplied = "FULL"
	InterestRateAppliedGuaranteed   InterestRateApplied = "GUARANTEED"
	InterestRateAppliedUnGuaranteed InterestRateApplied = "UN_GUARANTEED"
)

// BaseRate представляет базовую ставку
type BaseRate string

const (
	BaseRateWSJPrime BaseRate = "WSJ_PRIME"
	BaseRateSBAPeg   BaseRate = "SBA_PEG"
	BaseRateFixed    BaseRate = "FIXED_RATE"
	BaseRateOther    BaseRate = "OTHER"
)

// Loan представляет структурированные условия кредита
type Loan struct {
	LoanNumber  string      `gorm:"column:loan_number;primaryKey;size:50"`
	LoanProgram LoanProgram `gorm:"column:loan_program;type:varchar(10);not null"`
	LoanType    LoanType    `gorm:"column:loan_type;type:varchar(15);not null"`

	// Поля, обязательные только для программы SBA
	LoanDeliveryMethod *string `gorm:"column:loan_delivery_method;size:4"`
	JobsCreated        *int    `gorm:"column:jobs_created"`
	JobsRetained       *int    `gorm:"column:jobs_retained"`

	// Поле, обязательное только для невозобновляемых и строительных линий
	ConversionType *ConversionType `gorm:"column:conversion_type;type:varchar(20)"`

	BorrowerID           uint      `gorm:"column:borrower_id;not null;index"`
	Borrower             Affiliate `gorm:"foreignKey:BorrowerID;constraint:OnDelete:CASCADE"`
	BorrowerType         string    `gorm:"column:borrower_type;type:varchar(15);not null"`
	GuarantorID          uint      `gorm:"column:guarantor_id;not null;index"`
	Guarantor            Affiliate `gorm:"foreignKey:GuarantorID;constraint:OnDelete:CASCADE"`
	GuarantorAmountType  string    `gorm:"column:guarantor_amount_type;type:varchar(10);not null"`
	GuarantorSecurityType string   `gorm:"column:guarantor_security_type;type:varchar(10);not null"`

	LoanAmount       decimal.Decimal `gorm:"column:loan_amount;type:decimal(15,2);not null"`
	LoanPurpose      string          `gorm:"column:loan_purpose;size:255"`
	LoanTerm         int             `gorm:"column:loan_term;not null"`         // срок в месяцах
	LoanAmortization int             `gorm:"column:loan_amortization;not null"` // амортизация в месяцах

	// Первый процентный период
	Period1InterestRateType    InterestRateType    `gorm:"column:period_1_interest_rate_type;type:varchar(10);not null"`
	Period1InterestRateApplied InterestRateApplied `gorm:"column:period_1_interest_rate_applied;type:varchar(15);not null"`
	Period1BaseRate            BaseRate            `gorm:"column:period_1_base_rate;type:varchar(15);not null"`
	Period1BaseRateOther       *string             `gorm:"column:period_1_base_rate_other;size:255"`
	Period1InterestRateSpread  decimal.Decimal     `gorm:"column:period_1_interest_rate_spread;type:decimal(7,4);not null"`
	Period1FullRate            decimal.Decimal     `gorm:"column:period_1_full_rate;type:decimal(7,4);not null"`

	// Второй процентный период (необязательный)
	Period2InterestRateType    *InterestRateType    `gorm:"column:period_2_interest_rate_type;type:varchar(10)"`
	Period2InterestRateApplied *InterestRateApplied `gorm:"column:period_2_interest_rate_applied;type:varchar(15)"`
	Period2BaseRate            *BaseRate            `gorm:"column:period_2_base_rate;type:varchar(15)"`
	Period2BaseRateOther       *string              `gorm:"column:period_2_base_rate_other;size:255"`
	Period2InterestRateSpread  decimal.NullDecimal  `gorm:"column:period_2_interest_rate_spread;type:decimal(7,4)"`
	Period2FullRate            decimal.NullDecimal  `gorm:"column:period_2_full_rate;type:decimal(7,4)"`

	InterestRateRepricingFrequency       string     `gorm:"column:interest_rate_repricing_frequency;type:varchar(15);not null"`
	InterestRateRepricingFrequencyCustom *string    `gorm:"column:interest_rate_repricing_frequency_custom;size:255"`
	FirstInterestRateAdjustmentDate      *time.Time `gorm:"column:first_interest_rate_adjustment_date"`

	RepaymentFrequency       string  `gorm:"column:repayment_frequency;type:varchar(15);not null"`
	RepaymentFrequencyCustom *string `gorm:"column:repayment_frequency_custom;size:255"`
	RepaymentType            string  `gorm:"column:repayment_type;type:varchar(22);not null"`
	RepaymentTypeModified    *string `gorm:"column:repayment_type_modified;size:255"`

	// Назначения ролей; при удалении пользователя ссылка обнуляется
	LoanOfficerID      *uint `gorm:"column:loan_officer_id"`
	LoanOfficer        *User `gorm:"foreignKey:LoanOfficerID;constraint:OnDelete:SET NULL"`
	CreditAnalystID    *uint `gorm:"column:credit_analyst_id"`
	CreditAnalyst      *User `gorm:"foreignKey:CreditAnalystID;constraint:OnDelete:SET NULL"`
	UnderwriterID      *uint `gorm:"column:underwriter_id"`
	Underwriter        *User `gorm:"foreignKey:UnderwriterID;constraint:OnDelete:SET NULL"`
	PortfolioManagerID *uint `gorm:"column:portfolio_manager_id"`
	PortfolioManager   *User `gorm:"foreignKey:PortfolioManagerID;constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Loan) TableName() string {
	return "loans"
}
