package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"transaction-analyzer/internal/service"
	"transaction-analyzer/models"
)

const maxBodyBytes = 1 << 20

type TransactionRestHandler struct {
	analyzer service.TransactionQuerier
	report   service.ReportService
	log      *zap.Logger
}

func NewTransactionRestHandler(analyzer service.TransactionQuerier, report service.ReportService, log *zap.Logger) *TransactionRestHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransactionRestHandler{analyzer: analyzer, report: report, log: log}
}

func (h *TransactionRestHandler) registerRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.ListTransactions)
		r.Post("/", h.AddTransaction)
		r.Get("/types", h.UniqueTypes)
		r.Get("/descriptions", h.Descriptions)
		r.Get("/type/{type}", h.ByType)
		r.Get("/merchant/{merchant}", h.ByMerchant)
		r.Get("/range", h.InDateRange)
		r.Get("/before", h.BeforeDate)
		r.Get("/amount", h.ByAmountRange)
		r.Get("/{id}", h.GetTransaction)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Get("/total", h.TotalAmount)
		r.Get("/average", h.AverageAmount)
		r.Get("/debit-total", h.TotalDebitAmount)
		r.Get("/busiest-month", h.BusiestMonth)
		r.Get("/dominant-type", h.DominantType)
		r.Get("/summary", h.Summary)
	})
}

func (h *TransactionRestHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.AllTransactions())
}

func (h *TransactionRestHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var in models.TransactionInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.analyzer.AddTransaction(in); err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			h.log.Info("transaction rejected", zap.String("field", vErr.Field), zap.Error(vErr.Err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("add transaction failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add transaction")
		return
	}

	h.log.Info("transaction added", zap.String("transaction_id", *in.ID))
	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": *in.ID,
		"count":          h.analyzer.Count(),
	})
}

func (h *TransactionRestHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tx, ok := h.analyzer.FindTransactionByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("transaction %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionRestHandler) UniqueTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.UniqueTransactionTypes())
}

func (h *TransactionRestHandler) Descriptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.TransactionDescriptions())
}

func (h *TransactionRestHandler) ByType(w http.ResponseWriter, r *http.Request) {
	t := models.TransactionType(chi.URLParam(r, "type"))
	writeJSON(w, http.StatusOK, h.analyzer.TransactionsByType(t))
}

func (h *TransactionRestHandler) ByMerchant(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyzer.TransactionsByMerchant(chi.URLParam(r, "merchant")))
}

func (h *TransactionRestHandler) InDateRange(w http.ResponseWriter, r *http.Request) {
	start, err := dateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := dateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.TransactionsInDateRange(start, end))
}

func (h *TransactionRestHandler) BeforeDate(w http.ResponseWriter, r *http.Request) {
	cutoff, err := dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.TransactionsBeforeDate(cutoff))
}

func (h *TransactionRestHandler) ByAmountRange(w http.ResponseWriter, r *http.Request) {
	minAmount, err := floatParam(r, "min")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxAmount, err := floatParam(r, "max")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.TransactionsByAmountRange(minAmount, maxAmount))
}

func (h *TransactionRestHandler) TotalAmount(w http.ResponseWriter, r *http.Request) {
	var filter models.PeriodFilter
	var err error
	if filter.Year, err = optionalIntParam(r, "year", 0, 9999); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Month, err = optionalIntParam(r, "month", 0, 12); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Day, err = optionalIntParam(r, "day", 0, 31); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total_amount": h.analyzer.TotalAmountByPeriod(filter)})
}

func (h *TransactionRestHandler) AverageAmount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"average_amount": h.analyzer.AverageAmount()})
}

func (h *TransactionRestHandler) TotalDebitAmount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"total_debit_amount": h.analyzer.TotalDebitAmount()})
}

func (h *TransactionRestHandler) BusiestMonth(w http.ResponseWriter, r *http.Request) {
	switch models.TransactionType(r.URL.Query().Get("type")) {
	case "":
		writeJSON(w, http.StatusOK, map[string]int{"month": h.analyzer.MonthWithMostTransactions()})
	case models.TransactionTypeDebit:
		writeJSON(w, http.StatusOK, map[string]int{"month": h.analyzer.MonthWithMostDebitTransactions()})
	default:
		writeError(w, http.StatusBadRequest, "type must be empty or debit")
	}
}

func (h *TransactionRestHandler) DominantType(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]models.DominantType{"dominant_type": h.analyzer.DominantType()})
}

func (h *TransactionRestHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.report.Summarize())
}

func dateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("query parameter %q is required", name)
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("query parameter %q must be a YYYY-MM-DD date", name)
	}
	return d, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("query parameter %q is required", name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be a number", name)
	}
	return f, nil
}

func optionalIntParam(r *http.Request, name string, lo, hi int) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return nil, fmt.Errorf("query parameter %q must be an integer between %d and %d", name, lo, hi)
	}
	return &n, nil
}
