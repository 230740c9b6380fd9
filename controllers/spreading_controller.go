package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"opnlend/config"
	"opnlend/database"
	"opnlend/models"
	"opnlend/services"
)

// SpreadingController обрабатывает запросы финансовой отчетности:
// линейки отчетов, отчеты о прибылях и убытках, балансы и выгрузку
type SpreadingController struct {
	globalStatementService *services.GlobalStatementService
	incomeStatementService *services.IncomeStatementService
	balanceSheetService    *services.BalanceSheetService
	exportService          *services.ExportService
}

// NewSpreadingController создает новый экземпляр SpreadingController
func NewSpreadingController(db *database.Database, cfg *config.Config, email *services.EmailService) *SpreadingController {
	globalStatements := services.NewGlobalStatementService(db.DB)
	balanceSheets := services.NewBalanceSheetService(db.DB, email)

	return &SpreadingController{
		globalStatementService: globalStatements,
		incomeStatementService: services.NewIncomeStatementService(db.DB, balanceSheets),
		balanceSheetService:    balanceSheets,
		exportService:          services.NewExportService(db.DB, globalStatements),
	}
}

// CreateGlobalStatementRequest представляет запрос на создание линейки отчетов
type CreateGlobalStatementRequest struct {
	AffiliateID    uint   `json:"affiliateId"`
	BusinessUUID   string `json:"businessUuid"`
	IndividualUUID string `json:"individualUuid"`
}

// CreateGlobalStatement обрабатывает запрос на создание линейки отчетов
func (c *SpreadingController) CreateGlobalStatement(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto CreateGlobalStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	businessUUID, err := uuid.Parse(dto.BusinessUUID)
	if err != nil {
		http.Error(w, "Invalid businessUuid", http.StatusBadRequest)
		return
	}
	individualUUID, err := uuid.Parse(dto.IndividualUUID)
	if err != nil {
		http.Error(w, "Invalid individualUuid", http.StatusBadRequest)
		return
	}

	gs := &models.GlobalStatement{
		AffiliateID:    dto.AffiliateID,
		BusinessUUID:   businessUUID,
		IndividualUUID: individualUUID,
	}
	if err := c.globalStatementService.Create(gs); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, gs)
}

// GetGlobalStatement обрабатывает запрос на получение линейки отчетов
func (c *SpreadingController) GetGlobalStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid global statement id", http.StatusBadRequest)
		return
	}

	gs, err := c.globalStatementService.GetByID(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, gs)
}

// DeleteGlobalStatement обрабатывает запрос на удаление линейки отчетов
func (c *SpreadingController) DeleteGlobalStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid global statement id", http.StatusBadRequest)
		return
	}

	if err := c.globalStatementService.Delete(uint(id)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SaveIncomeStatement обрабатывает запрос на сохранение отчета о прибылях
// и убытках. Итоги пересчитываются сервисом перед записью.
func (c *SpreadingController) SaveIncomeStatement(w http.ResponseWriter, r *http.Request) {
	var st models.IncomeStatement
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.incomeStatementService.Save(&st); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// GetIncomeStatement обрабатывает запрос на получение отчета о прибылях и убытках
func (c *SpreadingController) GetIncomeStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid income statement id", http.StatusBadRequest)
		return
	}

	st, err := c.incomeStatementService.GetByID(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// GetIncomeStatements обрабатывает запрос на получение отчетов линейки
func (c *SpreadingController) GetIncomeStatements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid global statement id", http.StatusBadRequest)
		return
	}

	statements, err := c.incomeStatementService.GetAllByGlobalStatement(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, statements)
}

// DeleteIncomeStatement обрабатывает запрос на удаление отчета о прибылях и убытках
func (c *SpreadingController) DeleteIncomeStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid income statement id", http.StatusBadRequest)
		return
	}

	if err := c.incomeStatementService.Delete(uint(id)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SaveBalanceSheet обрабатывает запрос на сохранение баланса.
// Сцепка нераспределенной прибыли и пересчет выполняются сервисом.
func (c *SpreadingController) SaveBalanceSheet(w http.ResponseWriter, r *http.Request) {
	var bs models.BalanceSheet
	if err := json.NewDecoder(r.Body).Decode(&bs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.balanceSheetService.Save(&bs); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bs)
}

// GetBalanceSheet обрабатывает запрос на получение баланса
func (c *SpreadingController) GetBalanceSheet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		http.Error(w, "Invalid balance sheet uuid", http.StatusBadRequest)
		return
	}

	bs, err := c.balanceSheetService.GetByUUID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, bs)
}

// GetBalanceSheets обрабатывает запрос на получение балансов линейки
func (c *SpreadingController) GetBalanceSheets(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid global statement id", http.StatusBadRequest)
		return
	}

	sheets, err := c.balanceSheetService.GetAllByGlobalStatement(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sheets)
}

// DeleteBalanceSheet обрабатывает запрос на удаление баланса
func (c *SpreadingController) DeleteBalanceSheet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		http.Error(w, "Invalid balance sheet uuid", http.StatusBadRequest)
		return
	}

	if err := c.balanceSheetService.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportGlobalStatement обрабатывает запрос на XML-выгрузку линейки отчетов
func (c *SpreadingController) ExportGlobalStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid global statement id", http.StatusBadRequest)
		return
	}

	xml, err := c.exportService.ExportGlobalStatementXML(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(xml)
}
