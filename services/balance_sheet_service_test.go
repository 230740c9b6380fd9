package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"opnlend/models"
)

// setupSpreadTestDB создает базу в памяти для тестов отчетности
func setupSpreadTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// База в памяти живет в рамках одного соединения
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.GlobalStatement{}, &models.IncomeStatement{}, &models.BalanceSheet{}, &models.UserDefinedField{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

func TestBalanceSheetBalancedWhenEquationHolds(t *testing.T) {
	db := setupSpreadTestDB(t)
	service := NewBalanceSheetService(db, nil)

	bs := &models.BalanceSheet{
		CashAtFinancialInstitution: decimal.NewFromInt(100000),
		TradeAccounts:              decimal.NewFromInt(40000),
		PaidInCapital:              decimal.NewFromInt(60000),
	}
	if err := service.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	if !bs.TotalAssets.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("total_assets = %s, want 100000", bs.TotalAssets)
	}
	if !bs.TotalLiabilities.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("total_liabilities = %s, want 40000", bs.TotalLiabilities)
	}
	if !bs.TotalShareholdersEquity.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("total_shareholders_equity = %s, want 60000", bs.TotalShareholdersEquity)
	}
	if !bs.UnbalancedAmount.IsZero() {
		t.Errorf("unbalanced_amount = %s, want 0", bs.UnbalancedAmount)
	}
}

func TestBalanceSheetUnbalancedAmountIsSigned(t *testing.T) {
	db := setupSpreadTestDB(t)
	service := NewBalanceSheetService(db, nil)

	// Активов больше, чем обязательств и капитала
	bs := &models.BalanceSheet{
		CashAtFinancialInstitution: decimal.NewFromInt(100000),
		TradeAccounts:              decimal.NewFromInt(30000),
		PaidInCapital:              decimal.NewFromInt(60000),
	}
	if err := service.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !bs.UnbalancedAmount.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("unbalanced_amount = %s, want 10000", bs.UnbalancedAmount)
	}

	// Обязательств и капитала больше, чем активов
	bs2 := &models.BalanceSheet{
		CashAtFinancialInstitution: decimal.NewFromInt(100000),
		TradeAccounts:              decimal.NewFromInt(50000),
		PaidInCapital:              decimal.NewFromInt(60000),
	}
	if err := service.Save(bs2); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !bs2.UnbalancedAmount.Equal(decimal.NewFromInt(-10000)) {
		t.Errorf("unbalanced_amount = %s, want -10000", bs2.UnbalancedAmount)
	}
}

func TestBalanceSheetNormalizesContraAccounts(t *testing.T) {
	service := NewBalanceSheetService(nil, nil)

	// Накопленная амортизация введена положительной величиной резерва
	bs := &models.BalanceSheet{
		MachineryAndEquipment:   decimal.NewFromInt(20000),
		AccumulatedDepreciation: decimal.NewFromInt(5000),
	}
	service.Recompute(bs)

	if !bs.AccumulatedDepreciation.Equal(decimal.NewFromInt(-5000)) {
		t.Errorf("accumulated_depreciation = %s, want -5000", bs.AccumulatedDepreciation)
	}
	// Контрарный счет складывается с валовой стоимостью, а не вычитается
	if !bs.NetPlantAndEquipment.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("net_plant_and_equipment = %s, want 15000", bs.NetPlantAndEquipment)
	}

	// Отрицательный ввод остается как есть
	bs2 := &models.BalanceSheet{
		AccountsReceivable: decimal.NewFromInt(10000),
		BadDebtAllowance:   decimal.NewFromInt(-1000),
	}
	service.Recompute(bs2)
	if !bs2.AccountsReceivableNet.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("accounts_receivable_net = %s, want 9000", bs2.AccountsReceivableNet)
	}
}

// saveIncomeStatement сохраняет отчет о прибылях и убытках для тестов цепочки
func saveIncomeStatement(t *testing.T, service *IncomeStatementService, gsID uint, revenue int64, periodEnding time.Time) *models.IncomeStatement {
	t.Helper()

	st := &models.IncomeStatement{
		GlobalStatementID:         &gsID,
		FinancialStatementQuality: models.QualityTaxReturns,
		Revenue:                   decimal.NewFromInt(revenue),
		PeriodEndingDate:          &periodEnding,
	}
	if err := service.Save(st); err != nil {
		t.Fatalf("unexpected income statement save error: %v", err)
	}
	return st
}

func TestRetainedEarningsChainAcrossPeriods(t *testing.T) {
	db := setupSpreadTestDB(t)
	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)

	gsID := uint(1)
	is1 := saveIncomeStatement(t, incomeStatements, gsID, 10000,
		time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC))
	is2 := saveIncomeStatement(t, incomeStatements, gsID, 5000,
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))

	b1 := &models.BalanceSheet{
		GlobalStatementID: &gsID,
		IncomeStatementID: &is1.ID,
	}
	if err := balanceSheets.Save(b1); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Первый период: начальная нераспределенная прибыль нулевая,
	// прибыль текущего периода перенесена из связанного отчета
	if !b1.BeginningRetainedEarnings.IsZero() {
		t.Errorf("b1 beginning_retained_earnings = %s, want 0", b1.BeginningRetainedEarnings)
	}
	if !b1.CurrentPeriodsNetIncomeAfterTax.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("b1 current_periods_net_income_after_tax = %s, want 10000", b1.CurrentPeriodsNetIncomeAfterTax)
	}
	if !b1.RetainedEarningsSubtotal.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("b1 retained_earnings_subtotal = %s, want 10000", b1.RetainedEarningsSubtotal)
	}

	b2 := &models.BalanceSheet{
		GlobalStatementID: &gsID,
		IncomeStatementID: &is2.ID,
	}
	if err := balanceSheets.Save(b2); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Второй период начинается с итоговой нераспределенной прибыли первого
	if !b2.BeginningRetainedEarnings.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("b2 beginning_retained_earnings = %s, want 10000", b2.BeginningRetainedEarnings)
	}
	if !b2.RetainedEarningsSubtotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("b2 retained_earnings_subtotal = %s, want 15000", b2.RetainedEarningsSubtotal)
	}
}

func TestOutOfOrderInsertRechainsLineage(t *testing.T) {
	db := setupSpreadTestDB(t)
	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)

	gsID := uint(1)
	is1 := saveIncomeStatement(t, incomeStatements, gsID, 10000,
		time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC))
	is2 := saveIncomeStatement(t, incomeStatements, gsID, 5000,
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))

	// Сначала сохраняется более поздний период
	b2 := &models.BalanceSheet{
		GlobalStatementID: &gsID,
		IncomeStatementID: &is2.ID,
	}
	if err := balanceSheets.Save(b2); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !b2.BeginningRetainedEarnings.IsZero() {
		t.Errorf("b2 beginning_retained_earnings before b1 = %s, want 0", b2.BeginningRetainedEarnings)
	}

	// Вставка более раннего периода перестраивает всю цепочку
	b1 := &models.BalanceSheet{
		GlobalStatementID: &gsID,
		IncomeStatementID: &is1.ID,
	}
	if err := balanceSheets.Save(b1); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	reloaded, err := balanceSheets.GetByUUID(b2.UUID)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if !reloaded.BeginningRetainedEarnings.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("b2 beginning_retained_earnings after b1 = %s, want 10000", reloaded.BeginningRetainedEarnings)
	}
	if !reloaded.RetainedEarningsSubtotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("b2 retained_earnings_subtotal after b1 = %s, want 15000", reloaded.RetainedEarningsSubtotal)
	}
}

func TestLineagesAreIndependent(t *testing.T) {
	db := setupSpreadTestDB(t)
	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)

	gs1 := uint(1)
	gs2 := uint(2)
	is1 := saveIncomeStatement(t, incomeStatements, gs1, 10000,
		time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC))
	is2 := saveIncomeStatement(t, incomeStatements, gs2, 7000,
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))

	b1 := &models.BalanceSheet{GlobalStatementID: &gs1, IncomeStatementID: &is1.ID}
	if err := balanceSheets.Save(b1); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Баланс другой линии не видит чужую нераспределенную прибыль
	b2 := &models.BalanceSheet{GlobalStatementID: &gs2, IncomeStatementID: &is2.ID}
	if err := balanceSheets.Save(b2); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !b2.BeginningRetainedEarnings.IsZero() {
		t.Errorf("b2 beginning_retained_earnings = %s, want 0", b2.BeginningRetainedEarnings)
	}
}

func TestIncomeStatementUpdateRechainsBalanceSheets(t *testing.T) {
	db := setupSpreadTestDB(t)
	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)

	gsID := uint(1)
	is1 := saveIncomeStatement(t, incomeStatements, gsID, 10000,
		time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC))
	is2 := saveIncomeStatement(t, incomeStatements, gsID, 5000,
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))

	b1 := &models.BalanceSheet{GlobalStatementID: &gsID, IncomeStatementID: &is1.ID}
	if err := balanceSheets.Save(b1); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	b2 := &models.BalanceSheet{GlobalStatementID: &gsID, IncomeStatementID: &is2.ID}
	if err := balanceSheets.Save(b2); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Правка прибыли раннего периода распространяется на все последующие балансы
	is1.Revenue = decimal.NewFromInt(20000)
	if err := incomeStatements.Save(is1); err != nil {
		t.Fatalf("unexpected income statement save error: %v", err)
	}

	reloaded, err := balanceSheets.GetByUUID(b2.UUID)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if !reloaded.BeginningRetainedEarnings.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("b2 beginning_retained_earnings = %s, want 20000", reloaded.BeginningRetainedEarnings)
	}
	if !reloaded.RetainedEarningsSubtotal.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("b2 retained_earnings_subtotal = %s, want 25000", reloaded.RetainedEarningsSubtotal)
	}
}

func TestBalanceSheetSaveIsIdempotent(t *testing.T) {
	db := setupSpreadTestDB(t)
	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)

	gsID := uint(1)
	is1 := saveIncomeStatement(t, incomeStatements, gsID, 10000,
		time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC))

	bs := &models.BalanceSheet{
		GlobalStatementID:          &gsID,
		IncomeStatementID:          &is1.ID,
		CashAtFinancialInstitution: decimal.NewFromInt(10000),
	}
	if err := balanceSheets.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	first := bs.RetainedEarningsSubtotal

	if err := balanceSheets.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !bs.RetainedEarningsSubtotal.Equal(first) {
		t.Errorf("repeated save changed retained_earnings_subtotal: %s != %s",
			bs.RetainedEarningsSubtotal, first)
	}
	if !bs.UnbalancedAmount.IsZero() {
		t.Errorf("unbalanced_amount = %s, want 0", bs.UnbalancedAmount)
	}
}

func TestBalanceSheetDeleteRechainsLineage(t *testing.T) {
	db := setupSpreadTestDB(t)
	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)

	gsID := uint(1)
	is1 := saveIncomeStatement(t, incomeStatements, gsID, 10000,
		time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC))
	is2 := saveIncomeStatement(t, incomeStatements, gsID, 5000,
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))

	b1 := &models.BalanceSheet{GlobalStatementID: &gsID, IncomeStatementID: &is1.ID}
	if err := balanceSheets.Save(b1); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	b2 := &models.BalanceSheet{GlobalStatementID: &gsID, IncomeStatementID: &is2.ID}
	if err := balanceSheets.Save(b2); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Удаление раннего периода возвращает поздний к нулевому началу
	if err := balanceSheets.Delete(b1.UUID); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}

	reloaded, err := balanceSheets.GetByUUID(b2.UUID)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if !reloaded.BeginningRetainedEarnings.IsZero() {
		t.Errorf("b2 beginning_retained_earnings after delete = %s, want 0", reloaded.BeginningRetainedEarnings)
	}
	if !reloaded.RetainedEarningsSubtotal.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("b2 retained_earnings_subtotal after delete = %s, want 5000", reloaded.RetainedEarningsSubtotal)
	}
}

func TestOutOfOrderInsertUnderLineageRecord(t *testing.T) {
	db := setupSpreadTestDB(t)
	if err := db.AutoMigrate(&models.Affiliate{}, &models.Individual{}, &models.Business{}, &models.GlobalStatement{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	// Линия отчетности существует как запись: перестройка цепочки
	// выполняется под блокировкой ее строки
	gs := seedLineage(t, db)

	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)
	is1 := saveIncomeStatement(t, incomeStatements, gs.ID, 10000,
		time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC))
	is2 := saveIncomeStatement(t, incomeStatements, gs.ID, 5000,
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC))

	// Поздний период вводится первым
	b2 := &models.BalanceSheet{GlobalStatementID: &gs.ID, IncomeStatementID: &is2.ID}
	if err := balanceSheets.Save(b2); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	b1 := &models.BalanceSheet{GlobalStatementID: &gs.ID, IncomeStatementID: &is1.ID}
	if err := balanceSheets.Save(b1); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	reloaded, err := balanceSheets.GetByUUID(b2.UUID)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if !reloaded.BeginningRetainedEarnings.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("b2 beginning_retained_earnings = %s, want 10000", reloaded.BeginningRetainedEarnings)
	}
	if !reloaded.RetainedEarningsSubtotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("b2 retained_earnings_subtotal = %s, want 15000", reloaded.RetainedEarningsSubtotal)
	}
}

func TestUserDefinedFieldsFeedSubtotals(t *testing.T) {
	db := setupSpreadTestDB(t)
	service := NewBalanceSheetService(db, nil)

	bs := &models.BalanceSheet{
		CashAtFinancialInstitution:  decimal.NewFromInt(112000),
		LongTermNotesPayableGeneric: decimal.NewFromInt(40000),
		PaidInCapital:               decimal.NewFromInt(60000),
		UserDefinedFields: []models.UserDefinedField{
			{FieldName: "Вексель учредителя", StatementLine: "long_term_notes_payable_generic", Value: decimal.NewFromInt(7000)},
			{FieldName: "Резерв переоценки", StatementLine: "other_adjustments_to_equity_generic", Value: decimal.NewFromInt(5000)},
		},
	}
	if err := service.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	if !bs.OtherLongTermNotesPayableSubtotal.Equal(decimal.NewFromInt(47000)) {
		t.Errorf("other_long_term_notes_payable_subtotal = %s, want 47000", bs.OtherLongTermNotesPayableSubtotal)
	}
	if !bs.OtherAdjustmentsToEquitySubtotal.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("other_adjustments_to_equity_subtotal = %s, want 5000", bs.OtherAdjustmentsToEquitySubtotal)
	}
	if !bs.TotalShareholdersEquity.Equal(decimal.NewFromInt(65000)) {
		t.Errorf("total_shareholders_equity = %s, want 65000", bs.TotalShareholdersEquity)
	}
	if !bs.UnbalancedAmount.IsZero() {
		t.Errorf("unbalanced_amount = %s, want 0", bs.UnbalancedAmount)
	}

	// Статьи сохраняются вместе с балансом
	reloaded, err := service.GetByUUID(bs.UUID)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(reloaded.UserDefinedFields) != 2 {
		t.Errorf("user defined fields = %d, want 2", len(reloaded.UserDefinedFields))
	}
}

func TestUserDefinedFieldRejectsUnknownLine(t *testing.T) {
	db := setupSpreadTestDB(t)
	service := NewBalanceSheetService(db, nil)

	// Расчетная статья не может быть целевой строкой
	bs := &models.BalanceSheet{
		UserDefinedFields: []models.UserDefinedField{
			{FieldName: "Корректировка", StatementLine: "total_assets", Value: decimal.NewFromInt(1000)},
		},
	}
	err := service.Save(bs)
	if err == nil {
		t.Fatal("expected validation error for derived statement line")
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if validationErr.Fields[0].Code != ValidationInvalidValue {
		t.Errorf("code = %s, want %s", validationErr.Fields[0].Code, ValidationInvalidValue)
	}

	// Имя статьи обязательно
	bs = &models.BalanceSheet{
		UserDefinedFields: []models.UserDefinedField{
			{StatementLine: "other_adjustments_to_equity_generic", Value: decimal.NewFromInt(1000)},
		},
	}
	if err := service.Save(bs); err == nil {
		t.Error("expected validation error for missing field name")
	}
}

func TestUserDefinedFieldsReplacedOnResave(t *testing.T) {
	db := setupSpreadTestDB(t)
	service := NewBalanceSheetService(db, nil)

	bs := &models.BalanceSheet{
		UserDefinedFields: []models.UserDefinedField{
			{FieldName: "Вексель учредителя", StatementLine: "long_term_notes_payable_generic", Value: decimal.NewFromInt(7000)},
			{FieldName: "Резерв переоценки", StatementLine: "other_adjustments_to_equity_generic", Value: decimal.NewFromInt(5000)},
		},
	}
	if err := service.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// Повторное сохранение заменяет набор статей целиком
	bs.UserDefinedFields = []models.UserDefinedField{
		{FieldName: "Резерв переоценки", StatementLine: "other_adjustments_to_equity_generic", Value: decimal.NewFromInt(2000)},
	}
	if err := service.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	reloaded, err := service.GetByUUID(bs.UUID)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(reloaded.UserDefinedFields) != 1 {
		t.Errorf("user defined fields = %d, want 1", len(reloaded.UserDefinedFields))
	}
	if !reloaded.OtherAdjustmentsToEquitySubtotal.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("other_adjustments_to_equity_subtotal = %s, want 2000", reloaded.OtherAdjustmentsToEquitySubtotal)
	}
	if !reloaded.OtherLongTermNotesPayableSubtotal.IsZero() {
		t.Errorf("other_long_term_notes_payable_subtotal = %s, want 0", reloaded.OtherLongTermNotesPayableSubtotal)
	}
}
