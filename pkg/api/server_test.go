package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/jwhyun/spotdex/pkg/core/engine"
)

var (
	alice = "0xAA00000000000000000000000000000000000000"
	gold  = common.HexToAddress("0x0000000000000000000000000000000000000b01")
	usd   = common.HexToAddress("0x0000000000000000000000000000000000000c01")
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := engine.New(engine.Params{BaseAsset: gold, QuoteAsset: usd})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return NewServer(eng, zap.NewNop().Sugar(), "http://localhost:3000")
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestGetConfig(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, "GET", "/api/v1/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg ConfigInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.BaseAsset != gold.Hex() || cfg.QuoteAsset != usd.Hex() {
		t.Errorf("config = %+v", cfg)
	}
}

func TestPlaceAndGetOrder(t *testing.T) {
	s := newTestServer(t)

	dep := doJSON(t, s, "POST", "/api/v1/deposits", DepositRequest{
		Sender: alice, Amount: 100, TokenContract: gold.Hex(),
	})
	if dep.Code != http.StatusOK {
		t.Fatalf("deposit status = %d: %s", dep.Code, dep.Body.String())
	}

	rec := doJSON(t, s, "POST", "/api/v1/orders", PlaceRequest{
		Owner: alice, Side: "sell", AmountBase: 40, PriceNum: 100, PriceDen: 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("place status = %d: %s", rec.Code, rec.Body.String())
	}
	var placed PlaceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
		t.Fatal(err)
	}

	got := doJSON(t, s, "GET", fmt.Sprintf("/api/v1/orders/%d", placed.OrderID), nil)
	if got.Code != http.StatusOK {
		t.Fatalf("get status = %d", got.Code)
	}
	var o OrderInfo
	if err := json.Unmarshal(got.Body.Bytes(), &o); err != nil {
		t.Fatal(err)
	}
	if o.Side != "sell" || o.AmountBase != 40 || o.Status != "open" || o.LockedBaseRemaining != 40 {
		t.Errorf("order = %+v", o)
	}

	bal := doJSON(t, s, "GET", "/api/v1/balances/"+alice+"/"+gold.Hex(), nil)
	var b BalanceInfo
	if err := json.Unmarshal(bal.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if b.Amount != 60 {
		t.Errorf("balance after lock = %d, want 60", b.Amount)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)

	// Validation: zero amount
	rec := doJSON(t, s, "POST", "/api/v1/orders", PlaceRequest{
		Owner: alice, Side: "sell", AmountBase: 0, PriceNum: 100, PriceDen: 1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("validation status = %d, want 400", rec.Code)
	}

	// Insufficient funds
	rec = doJSON(t, s, "POST", "/api/v1/orders", PlaceRequest{
		Owner: alice, Side: "sell", AmountBase: 10, PriceNum: 100, PriceDen: 1,
	})
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("insufficient funds status = %d, want 402", rec.Code)
	}

	// State: cancel of a missing order
	rec = doJSON(t, s, "POST", "/api/v1/orders/cancel", CancelRequest{Caller: alice, OrderID: 7})
	if rec.Code != http.StatusConflict {
		t.Errorf("state status = %d, want 409", rec.Code)
	}

	// Unknown order id on GET
	rec = doJSON(t, s, "GET", "/api/v1/orders/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing order status = %d, want 404", rec.Code)
	}
}

func TestListOrdersPagination(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, "POST", "/api/v1/deposits", DepositRequest{Sender: alice, Amount: 100, TokenContract: gold.Hex()})
	for i := 0; i < 5; i++ {
		doJSON(t, s, "POST", "/api/v1/orders", PlaceRequest{
			Owner: alice, Side: "sell", AmountBase: 10, PriceNum: 100, PriceDen: 1,
		})
	}

	rec := doJSON(t, s, "GET", "/api/v1/orders?offset=2&limit=2", nil)
	var list []OrderInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != 2 || list[1].ID != 3 {
		t.Errorf("page = %+v", list)
	}

	byOwner := doJSON(t, s, "GET", "/api/v1/accounts/"+alice+"/orders", nil)
	if err := json.Unmarshal(byOwner.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 5 {
		t.Errorf("owner list len = %d, want 5", len(list))
	}
}
