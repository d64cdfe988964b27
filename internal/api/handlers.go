package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/book"
	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/edits"
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

type entryJSON struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Value          decimal.Decimal   `json:"value"`
	Currency       string            `json:"currency"`
	Date           string            `json:"date"`
	Category       string            `json:"category"`
	Account        string            `json:"account"`
	AccountInfo    map[string]string `json:"account_info,omitempty"`
	AdditionalInfo string            `json:"additional_info,omitempty"`
}

func toEntryJSON(e *model.Entry) entryJSON {
	out := entryJSON{
		ID:             e.ID(),
		Name:           e.Name(),
		Value:          e.Value(),
		Currency:       e.Currency(),
		Date:           e.Date().Format(time.DateOnly),
		Account:        e.AccountID(),
		AccountInfo:    e.AccountInfo(),
		AdditionalInfo: e.AdditionalInfo(),
	}
	if c := e.Category(); c != nil {
		out.Category = c.String()
	}
	return out
}

type pointJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Visible bool   `json:"visible"`
	Active  bool   `json:"active"`
}

type journalJSON struct {
	Name          string                     `json:"name"`
	Description   string                     `json:"description,omitempty"`
	StartValues   map[string]decimal.Decimal `json:"start_values"`
	ReadingPoints []pointJSON                `json:"reading_points"`
	Entries       []entryJSON                `json:"entries"`
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := s.book.Journal()
	out := journalJSON{
		Name:          j.Name(),
		Description:   j.Description(),
		StartValues:   j.StartValues(),
		ReadingPoints: []pointJSON{},
		Entries:       []entryJSON{},
	}
	for _, p := range j.ReadingPoints() {
		out.ReadingPoints = append(out.ReadingPoints, pointJSON{
			ID:      p.ID(),
			Name:    p.Name(),
			Date:    p.Date().Format(time.DateOnly),
			Visible: p.Visible(),
			Active:  p.Active(),
		})
	}
	for _, e := range j.Entries() {
		out.Entries = append(out.Entries, toEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type categorySum struct {
	Category string          `json:"category"`
	Sum      decimal.Decimal `json:"sum"`
}

type periodJSON struct {
	Point   string          `json:"point"`
	Date    string          `json:"date"`
	Overall decimal.Decimal `json:"overall"`
}

type balanceJSON struct {
	Overall    decimal.Decimal            `json:"overall"`
	Accounts   map[string]decimal.Decimal `json:"accounts"`
	Categories []categorySum              `json:"categories"`
	Periods    []periodJSON               `json:"periods"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.book.Balance()
	out := balanceJSON{
		Overall:    info.OverallSum(),
		Accounts:   info.AccountSums(),
		Categories: []categorySum{},
		Periods:    []periodJSON{},
	}

	sums := info.CategorySums()
	cats := make([]*category.Category, 0, len(sums))
	for c := range sums {
		if !c.IsRoot() {
			cats = append(cats, c)
		}
	}
	slices.SortFunc(cats, category.Compare)
	for _, c := range cats {
		out.Categories = append(out.Categories, categorySum{Category: c.String(), Sum: sums[c]})
	}

	for _, p := range s.book.Periods() {
		out.Periods = append(out.Periods, periodJSON{
			Point:   p.Point.Name(),
			Date:    p.Point.Date().Format(time.DateOnly),
			Overall: p.Info.OverallSum(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{}
	for _, c := range s.book.Categories().Existing() {
		if !c.IsRoot() {
			out = append(out, c.String())
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type addEntryRequest struct {
	Name           string            `json:"name"`
	Value          decimal.Decimal   `json:"value"`
	Currency       string            `json:"currency"`
	Date           string            `json:"date"`
	Category       string            `json:"category"`
	Account        string            `json:"account"`
	AccountInfo    map[string]string `json:"account_info"`
	AdditionalInfo string            `json:"additional_info"`
}

type problemJSON struct {
	Rule     int    `json:"rule"`
	Critical bool   `json:"critical"`
	Message  string `json:"message"`
}

func toProblems(errs []journal.ValidationError) []problemJSON {
	out := make([]problemJSON, 0, len(errs))
	for _, e := range errs {
		out = append(out, problemJSON{Rule: e.Rule, Critical: e.Critical, Message: e.Err.Error()})
	}
	return out
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
			return
		}
		date = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.book.NewEntry(model.EntryParams{
		Name:           req.Name,
		Value:          req.Value,
		Currency:       req.Currency,
		Date:           date,
		AccountID:      req.Account,
		AccountInfo:    req.AccountInfo,
		AdditionalInfo: req.AdditionalInfo,
	}, req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	warnings, err := s.book.AddEntries(e)
	if err != nil {
		if errors.Is(err, book.ErrRejected) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    map[string]any{"message": err.Error(), "status": http.StatusUnprocessableEntity},
				"problems": toProblems(warnings),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.changed(r.Context(), s.book.Undo); err != nil {
		writeError(w, http.StatusInternalServerError, "saving journal: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"entry":    toEntryJSON(e),
		"warnings": toProblems(warnings),
	})
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.book.Entry(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := s.book.RemoveEntries(e); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.changed(r.Context(), s.book.Undo); err != nil {
		writeError(w, http.StatusInternalServerError, "saving journal: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type historyItemJSON struct {
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Done        bool   `json:"done"`
}

type historyJSON struct {
	Items   []historyItemJSON `json:"items"`
	Limit   int               `json:"limit"`
	CanUndo bool              `json:"can_undo"`
	CanRedo bool              `json:"can_redo"`
	Undo    string            `json:"undo,omitempty"`
	Redo    string            `json:"redo,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.book.History()
	out := historyJSON{
		Items:   []historyItemJSON{},
		Limit:   h.Limit(),
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
		Undo:    h.UndoDescription(),
		Redo:    h.RedoDescription(),
	}
	for _, it := range h.History() {
		out.Items = append(out.Items, historyItemJSON{Description: it.Description, Kind: it.Kind.String(), Done: it.Done})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.book.Undo, s.book.Redo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.book.Redo, s.book.Undo)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, fn, revert func() (string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc, err := fn()
	switch {
	case errors.Is(err, edits.ErrCannotUndo), errors.Is(err, edits.ErrCannotRedo), errors.Is(err, edits.ErrNotAlive):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.changed(r.Context(), revert); err != nil {
		writeError(w, http.StatusInternalServerError, "saving journal: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"description": desc})
}
