package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/etnz/tradebook"
)

// tradeRequest is the body schema shared by POST and PATCH /api/v1/trade.
// Pointers distinguish "absent" from zero: price is optional and defaults to
// 100, everything else is required.
type tradeRequest struct {
	TickerSymbol *string  `json:"tickerSymbol"`
	Type         *string  `json:"type"`
	Price        *float64 `json:"price"`
	Quantity     *int64   `json:"quantity"`
}

// validate checks the request against the schema and resolves defaults.
func (r tradeRequest) validate() (ticker string, side tradebook.Side, price tradebook.Price, quantity tradebook.Quantity, err error) {
	if r.TickerSymbol == nil || *r.TickerSymbol == "" {
		return "", "", price, quantity, fmt.Errorf("tickerSymbol is required")
	}
	if r.Type == nil {
		return "", "", price, quantity, fmt.Errorf("type is required")
	}
	side, err = tradebook.ParseSide(*r.Type)
	if err != nil {
		return "", "", price, quantity, fmt.Errorf("type must be BUY or SELL")
	}
	if r.Quantity == nil {
		return "", "", price, quantity, fmt.Errorf("quantity is required")
	}
	if *r.Quantity < 1 {
		return "", "", price, quantity, fmt.Errorf("quantity must be at least 1")
	}
	price = tradebook.DefaultPrice
	if r.Price != nil {
		if *r.Price < 0 {
			return "", "", price, quantity, fmt.Errorf("price must not be negative")
		}
		price = tradebook.P(*r.Price)
	}
	return *r.TickerSymbol, side, price, tradebook.Q(*r.Quantity), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, "ok")
}

func (s *Server) handlePortfolio(w http.ResponseWriter, req *http.Request) {
	positions, err := s.ledger.Holdings(req.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, positions)
}

func (s *Server) handleReturns(w http.ResponseWriter, req *http.Request) {
	returns, err := s.ledger.Returns(req.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, returns)
}

func (s *Server) handleTrades(w http.ResponseWriter, req *http.Request) {
	history, err := s.ledger.History(req.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, history)
}

func (s *Server) handleAddTrade(w http.ResponseWriter, req *http.Request) {
	var body tradeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		s.failValidation(w, "malformed request body")
		return
	}
	ticker, side, price, quantity, err := body.validate()
	if err != nil {
		s.failValidation(w, err.Error())
		return
	}

	_, trade, err := s.ledger.RecordTrade(req.Context(), ticker, side, price, quantity)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, trade)
}

func (s *Server) handleRemoveTrade(w http.ResponseWriter, req *http.Request) {
	position, err := s.ledger.RemoveTrade(req.Context(), req.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, position)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, req *http.Request) {
	var body tradeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		s.failValidation(w, "malformed request body")
		return
	}
	ticker, side, price, quantity, err := body.validate()
	if err != nil {
		s.failValidation(w, err.Error())
		return
	}

	trade, err := s.ledger.UpdateTrade(req.Context(), req.PathValue("id"), ticker, side, price, quantity)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, trade)
}
