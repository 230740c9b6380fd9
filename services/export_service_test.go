package services

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"opnlend/models"
)

// seedLineage создает связку сторон сделки и линейку отчетов для выгрузки
func seedLineage(t *testing.T, db *gorm.DB) *models.GlobalStatement {
	t.Helper()

	affiliate := &models.Affiliate{AffiliateCode: "AFF-EXP", AffiliateType: models.AffiliateTypeBusiness}
	if err := db.Create(affiliate).Error; err != nil {
		t.Fatalf("failed to seed affiliate: %v", err)
	}
	business := &models.Business{
		AffiliateID:  affiliate.ID,
		EntityName:   "ООО Вектор",
		BusinessType: models.BusinessTypeLLC,
		EINEncrypted: "encrypted",
		EINHMAC:      uuid.NewString(),
	}
	if err := db.Create(business).Error; err != nil {
		t.Fatalf("failed to seed business: %v", err)
	}
	individual := &models.Individual{
		AffiliateID:     affiliate.ID,
		FirstName:       "Петр",
		LastName:        "Сидоров",
		SSNEncrypted:    "encrypted",
		SSNHMAC:         uuid.NewString(),
		JointlyReported: models.JointlyReportedSole,
	}
	if err := db.Create(individual).Error; err != nil {
		t.Fatalf("failed to seed individual: %v", err)
	}

	gs := &models.GlobalStatement{
		AffiliateID:    affiliate.ID,
		BusinessUUID:   business.UUID,
		IndividualUUID: individual.UUID,
	}
	if err := NewGlobalStatementService(db).Create(gs); err != nil {
		t.Fatalf("failed to create global statement: %v", err)
	}
	return gs
}

func TestExportGlobalStatementXML(t *testing.T) {
	db := setupSpreadTestDB(t)
	if err := db.AutoMigrate(&models.Affiliate{}, &models.Individual{}, &models.Business{}, &models.GlobalStatement{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	gs := seedLineage(t, db)

	balanceSheets := NewBalanceSheetService(db, nil)
	incomeStatements := NewIncomeStatementService(db, balanceSheets)
	saveIncomeStatement(t, incomeStatements, gs.ID, 100000, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))

	period := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	bs := &models.BalanceSheet{
		GlobalStatementID:          &gs.ID,
		EntityName:                 "ООО Вектор",
		PeriodEndingDate:           &period,
		CashAtFinancialInstitution: decimal.NewFromInt(50000),
		PaidInCapital:              decimal.NewFromInt(50000),
	}
	if err := balanceSheets.Save(bs); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	exportService := NewExportService(db, NewGlobalStatementService(db))
	data, err := exportService.ExportGlobalStatementXML(gs.ID)
	if err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		t.Fatalf("export is not valid XML: %v", err)
	}

	root := doc.SelectElement("global_statement")
	if root == nil {
		t.Fatal("missing global_statement root element")
	}

	entityName := root.FindElement("entity/entity_name")
	if entityName == nil || entityName.Text() != "ООО Вектор" {
		t.Error("entity block does not carry the entity name")
	}

	// Выгрузка содержит и исходные строки, и рассчитанные итоги
	netRevenue := root.FindElement("income_statements/income_statement/net_revenue")
	if netRevenue == nil || netRevenue.Text() != "100000.00" {
		t.Error("income statement block does not carry computed net_revenue")
	}
	totalAssets := root.FindElement("balance_sheets/balance_sheet/total_assets")
	if totalAssets == nil || totalAssets.Text() != "50000.00" {
		t.Error("balance sheet block does not carry computed total_assets")
	}

	quality := root.FindElement("income_statements/income_statement")
	if quality == nil || quality.SelectAttrValue("financial_statement_quality", "") != string(models.QualityTaxReturns) {
		t.Error("income statement block does not carry the statement quality")
	}
}

func TestExportUnknownGlobalStatement(t *testing.T) {
	db := setupSpreadTestDB(t)
	if err := db.AutoMigrate(&models.Affiliate{}, &models.Individual{}, &models.Business{}, &models.GlobalStatement{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	exportService := NewExportService(db, NewGlobalStatementService(db))
	if _, err := exportService.ExportGlobalStatementXML(999); err == nil {
		t.Error("expected error for unknown global statement")
	}
}
