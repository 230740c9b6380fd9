package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"opnlend/models"
)

// setupLoanTestDB создает базу в памяти для тестов кредитов
func setupLoanTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Loan{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

// baseLoan возвращает корректный коммерческий срочный кредит
func baseLoan(loanNumber string) *models.Loan {
	return &models.Loan{
		LoanNumber:                     loanNumber,
		LoanProgram:                    models.LoanProgramCommercial,
		LoanType:                       models.LoanTypeTerm,
		BorrowerID:                     1,
		BorrowerType:                   "BUSINESS",
		GuarantorID:                    2,
		GuarantorAmountType:            "FULL",
		GuarantorSecurityType:          "SECURED",
		LoanAmount:                     decimal.NewFromInt(250000),
		LoanTerm:                       120,
		LoanAmortization:               240,
		Period1InterestRateType:        models.InterestRateTypeFixed,
		Period1InterestRateApplied:     models.InterestRateAppliedFull,
		Period1BaseRate:                models.BaseRateFixed,
		Period1InterestRateSpread:      decimal.NewFromFloat(0.0),
		Period1FullRate:                decimal.NewFromFloat(7.25),
		InterestRateRepricingFrequency: "NONE",
		RepaymentFrequency:             "MONTHLY",
		RepaymentType:                  "PRINCIPAL_AND_INTEREST",
	}
}

func fieldCodes(t *testing.T, err error) map[string]ValidationCode {
	t.Helper()

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	codes := make(map[string]ValidationCode, len(validationErr.Fields))
	for _, f := range validationErr.Fields {
		codes[f.Field] = f.Code
	}
	return codes
}

func TestLoanRequiresLoanNumber(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	loan := baseLoan("")
	err := service.ValidateAndSave(loan)
	if err == nil {
		t.Fatal("expected validation error for missing loan number")
	}
	codes := fieldCodes(t, err)
	if codes["loan_number"] != ValidationMissingRequiredField {
		t.Errorf("loan_number code = %s, want %s", codes["loan_number"], ValidationMissingRequiredField)
	}
}

func TestLoanRejectsUnknownEnumValues(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	loan := baseLoan("L-100")
	loan.LoanProgram = "MYSTERY"
	err := service.ValidateAndSave(loan)
	if err == nil {
		t.Fatal("expected validation error for unknown loan program")
	}
	codes := fieldCodes(t, err)
	if codes["loan_program"] != ValidationInvalidEnumValue {
		t.Errorf("loan_program code = %s, want %s", codes["loan_program"], ValidationInvalidEnumValue)
	}
}

func TestSBALoanRequiresConditionalFields(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	loan := baseLoan("L-200")
	loan.LoanProgram = models.LoanProgramSBA
	err := service.ValidateAndSave(loan)
	if err == nil {
		t.Fatal("expected validation error for missing SBA fields")
	}

	codes := fieldCodes(t, err)
	for _, field := range []string{"loan_delivery_method", "jobs_created", "jobs_retained"} {
		if codes[field] != ValidationMissingRequiredField {
			t.Errorf("%s code = %s, want %s", field, codes[field], ValidationMissingRequiredField)
		}
	}
}

func TestSBALoanSavesWithConditionalFields(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	delivery := "7A"
	jobsCreated := 5
	jobsRetained := 12

	loan := baseLoan("L-201")
	loan.LoanProgram = models.LoanProgramSBA
	loan.LoanDeliveryMethod = &delivery
	loan.JobsCreated = &jobsCreated
	loan.JobsRetained = &jobsRetained

	if err := service.ValidateAndSave(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved, err := service.GetByNumber("L-201")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if saved.LoanDeliveryMethod == nil || *saved.LoanDeliveryMethod != "7A" {
		t.Error("loan_delivery_method was not persisted")
	}
}

func TestNonSBALoanClearsSBAFields(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	// Поля SBA были заполнены, но программа изменена на коммерческую
	delivery := "504"
	jobsCreated := 3

	loan := baseLoan("L-202")
	loan.LoanDeliveryMethod = &delivery
	loan.JobsCreated = &jobsCreated

	if err := service.ValidateAndSave(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loan.LoanDeliveryMethod != nil {
		t.Error("loan_delivery_method should be cleared for non-SBA program")
	}
	if loan.JobsCreated != nil {
		t.Error("jobs_created should be cleared for non-SBA program")
	}
}

func TestNonRevolvingLoanRequiresConversionType(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	loan := baseLoan("L-300")
	loan.LoanType = models.LoanTypeNonRevolving
	err := service.ValidateAndSave(loan)
	if err == nil {
		t.Fatal("expected validation error for missing conversion type")
	}

	codes := fieldCodes(t, err)
	if codes["conversion_type"] != ValidationMissingRequiredField {
		t.Errorf("conversion_type code = %s, want %s", codes["conversion_type"], ValidationMissingRequiredField)
	}
}

func TestConstructionLoanSavesWithConversionType(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	conversion := models.ConversionTypePermanent

	loan := baseLoan("L-301")
	loan.LoanType = models.LoanTypeConstruction
	loan.ConversionType = &conversion

	if err := service.ValidateAndSave(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved, err := service.GetByNumber("L-301")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if saved.ConversionType == nil || *saved.ConversionType != models.ConversionTypePermanent {
		t.Error("conversion_type was not persisted")
	}
}

func TestTermLoanClearsConversionType(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	conversion := models.ConversionTypeDueUponMaturity

	loan := baseLoan("L-302")
	loan.ConversionType = &conversion

	if err := service.ValidateAndSave(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loan.ConversionType != nil {
		t.Error("conversion_type should be cleared for term loan")
	}
}

func TestLoanDelete(t *testing.T) {
	db := setupLoanTestDB(t)
	service := NewLoanService(db)

	loan := baseLoan("L-400")
	if err := service.ValidateAndSave(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.Delete("L-400"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if err := service.Delete("L-400"); err == nil {
		t.Error("expected error when deleting missing loan")
	}
}
