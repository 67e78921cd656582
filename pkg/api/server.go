// Package api is the host surface over the settlement engine: a REST router
// for queries and operation submission, and a websocket stream of settlement
// events. Payment-proof authorization is the deployment wrapper's job and is
// deliberately absent here; handlers only parse addresses and forward.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/jwhyun/spotdex/pkg/core"
	"github.com/jwhyun/spotdex/pkg/core/engine"
	"github.com/jwhyun/spotdex/pkg/core/orders"
)

// Server handles REST and websocket connections.
type Server struct {
	engine *engine.Engine
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger

	corsOrigin string
}

func NewServer(eng *engine.Engine, log *zap.SugaredLogger, corsOrigin string) *Server {
	s := &Server{
		engine:     eng,
		router:     mux.NewRouter(),
		hub:        NewHub(),
		log:        log,
		corsOrigin: corsOrigin,
	}
	s.setupRoutes()
	return s
}

// Hub exposes the websocket hub so it can be wired as an event emitter.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Queries
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/balances/{account}/{asset}", s.handleGetBalance).Methods("GET")
	api.HandleFunc("/orders", s.handleListOrders).Methods("GET")
	api.HandleFunc("/orders/{id:[0-9]+}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/accounts/{account}/orders", s.handleListOrdersByOwner).Methods("GET")

	// Operations
	api.HandleFunc("/orders", s.handlePlaceOrder).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")
	api.HandleFunc("/execute", s.handleExecute).Methods("POST")
	api.HandleFunc("/deposits", s.handleDeposit).Methods("POST")
	api.HandleFunc("/withdrawals", s.handleWithdraw).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the websocket hub and serves HTTP until the listener fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.log.Infow("api_listening", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// ==============================
// REST handlers
// ==============================

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	base, quote := s.engine.Config()
	writeJSON(w, http.StatusOK, ConfigInfo{BaseAsset: base.Hex(), QuoteAsset: quote.Hex()})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	account, err := parseAddress(vars["account"])
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := parseAddress(vars["asset"])
	if err != nil {
		writeError(w, err)
		return
	}
	amount := s.engine.GetBalance(account, asset)
	writeJSON(w, http.StatusOK, BalanceInfo{Account: account.Hex(), Asset: asset.Hex(), Amount: amount})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: bad order id", core.ErrValidation))
		return
	}
	o, ok := s.engine.GetOrder(id)
	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toOrderInfo(o))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	offset := queryUint(r, "offset", 0)
	limit := queryUint(r, "limit", 100)
	list := s.engine.ListOrders(offset, limit)
	out := make([]OrderInfo, len(list))
	for i, o := range list {
		out[i] = toOrderInfo(o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListOrdersByOwner(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress(mux.Vars(r)["account"])
	if err != nil {
		writeError(w, err)
		return
	}
	list := s.engine.ListOrdersByOwner(account)
	out := make([]OrderInfo, len(list))
	for i, o := range list {
		out[i] = toOrderInfo(o)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	owner, err := parseAddress(req.Owner)
	if err != nil {
		writeError(w, err)
		return
	}
	side, ok := orders.ParseSide(req.Side)
	if !ok {
		writeError(w, fmt.Errorf("%w: invalid side %q", core.ErrValidation, req.Side))
		return
	}
	id, err := s.engine.Place(owner, side, req.AmountBase, req.MaxSpendQuote, req.PriceNum, req.PriceDen)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PlaceResponse{OrderID: id})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.Cancel(caller, req.OrderID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	if err := s.engine.Execute(req.MakerOrderID, req.TakerOrderID, req.BaseFill, req.QuotePaid); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	sender, err := parseAddress(req.Sender)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := parseAddress(req.TokenContract)
	if err != nil {
		writeError(w, err)
		return
	}
	refund, err := s.engine.OnTokenTransfer(sender, req.Amount, token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DepositResponse{Refund: refund})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := parseAddress(req.Asset)
	if err != nil {
		writeError(w, err)
		return
	}
	var receiver *common.Address
	if req.Receiver != "" {
		addr, err := parseAddress(req.Receiver)
		if err != nil {
			writeError(w, err)
			return
		}
		receiver = &addr
	}
	if err := s.engine.Withdraw(caller, asset, req.Amount, receiver, req.Msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==============================
// Helpers
// ==============================

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q is not a hex address", core.ErrValidation, s)
	}
	return common.HexToAddress(s), nil
}

func queryUint(r *http.Request, key string, def uint64) uint64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the settlement error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrState):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	}
	http.Error(w, err.Error(), status)
}
