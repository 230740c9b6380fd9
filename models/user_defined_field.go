package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserDefinedField представляет пользовательскую статью баланса.
// Статья привязана к конкретному балансу и вливается в строку отчета,
// указанную в statement_line, вместе со штатными полями участвуя
// в расчете промежуточных итогов.
type UserDefinedField struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	BalanceSheetUUID uuid.UUID `gorm:"column:balance_sheet_uuid;type:uuid;not null;index"`

	FieldName     string          `gorm:"column:field_name;not null;size:100"`
	StatementLine string          `gorm:"column:statement_line;not null;size:100"`
	Value         decimal.Decimal `gorm:"column:value;type:decimal(15,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (UserDefinedField) TableName() string {
	return "user_defined_fields"
}
