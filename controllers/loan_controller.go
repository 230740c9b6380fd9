package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"opnlend/database"
	"opnlend/models"
	"opnlend/services"
)

// LoanController обрабатывает запросы, связанные с кредитами
type LoanController struct {
	loanService *services.LoanService
}

// NewLoanController создает новый экземпляр LoanController
func NewLoanController(db *database.Database) *LoanController {
	return &LoanController{
		loanService: services.NewLoanService(db.DB),
	}
}

// SaveLoan обрабатывает запрос на создание или обновление кредита.
// Условные поля проверяются и зачищаются сервисом по категории кредита.
func (c *LoanController) SaveLoan(w http.ResponseWriter, r *http.Request) {
	var loan models.Loan
	if err := json.NewDecoder(r.Body).Decode(&loan); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.loanService.ValidateAndSave(&loan); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

// GetLoan обрабатывает запрос на получение кредита по номеру
func (c *LoanController) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanNumber := mux.Vars(r)["loanNumber"]

	loan, err := c.loanService.GetByNumber(loanNumber)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

// GetLoansByBorrower обрабатывает запрос на получение кредитов заемщика
func (c *LoanController) GetLoansByBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid borrower id", http.StatusBadRequest)
		return
	}

	loans, err := c.loanService.GetAllByBorrower(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, loans)
}

// DeleteLoan обрабатывает запрос на удаление кредита
func (c *LoanController) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanNumber := mux.Vars(r)["loanNumber"]

	if err := c.loanService.Delete(loanNumber); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
