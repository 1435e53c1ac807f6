package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
	"github.com/arafah-soft/agency_erp/internal/core/services"
	"github.com/arafah-soft/agency_erp/internal/dto"
	"github.com/arafah-soft/agency_erp/internal/handlers"
	"github.com/arafah-soft/agency_erp/internal/platform/config"
	"github.com/arafah-soft/agency_erp/internal/repositories/memory"
	"github.com/arafah-soft/agency_erp/internal/utils"
)

// The handler suite runs the real router against the in-memory store, so the
// full request path (auth middleware, binding, error mapping) is exercised.
type HandlersTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.Store
	container  *portssvc.ServiceContainer
	router     *gin.Engine
	adminToken string
	staffToken string
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.container = services.NewServiceContainer(services.Repositories{
		Ledger:   s.store,
		Account:  s.store,
		Party:    s.store,
		Currency: s.store,
		User:     s.store,
	})

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "test",
		IsProduction:      true,
	}
	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, s.container)

	admin, err := s.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username: "admin", Name: "Admin", Password: "admin-pass-1", Role: domain.RoleAdmin,
	}, "bootstrap")
	s.Require().NoError(err)
	staff, err := s.container.User.CreateUser(s.ctx, dto.CreateUserRequest{
		Username: "staff", Name: "Staff", Password: "staff-pass-1",
	}, admin.UserID)
	s.Require().NoError(err)

	s.adminToken, err = utils.GenerateJWT(admin.UserID, cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer)
	s.Require().NoError(err)
	s.staffToken, err = utils.GenerateJWT(staff.UserID, cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer)
	s.Require().NoError(err)
}

func (s *HandlersTestSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) seedAccount(id string, balance int64) {
	s.store.SeedAccount(domain.BankAccount{
		AccountID: id, AccountNumber: "AC-" + id, Name: "Account " + id,
		CurrencyCode: "BDT", OpeningBalance: decimal.NewFromInt(balance),
		Balance: decimal.NewFromInt(balance), IsActive: true,
	})
}

func (s *HandlersTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestAPIRequiresAuth() {
	w := s.do(http.MethodGet, "/api/v1/transactions", nil, "")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/transactions", nil, "not-a-token")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestLogin() {
	w := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Username: "staff", Password: "staff-pass-1",
	}, "")
	require.Equal(s.T(), http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(s.T(), resp.Token)
	assert.Equal(s.T(), "staff", resp.User.Username)

	w = s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Username: "staff", Password: "wrong",
	}, "")
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{
		Username: "nobody", Password: "whatever-pass",
	}, "")
	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *HandlersTestSuite) TestAccountCreateAndDuplicate() {
	req := dto.CreateAccountRequest{
		AccountNumber: "CASH-01", Name: "Office Cash", CurrencyCode: "BDT",
		OpeningBalance: decimal.NewFromInt(1000),
	}
	w := s.do(http.MethodPost, "/api/v1/accounts", req, s.staffToken)
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var created dto.AccountResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(s.T(), created.Balance.Equal(decimal.NewFromInt(1000)))

	w = s.do(http.MethodPost, "/api/v1/accounts", req, s.staffToken)
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *HandlersTestSuite) TestTransactionLifecycle() {
	s.seedAccount("acc-main", 1000)

	w := s.do(http.MethodPost, "/api/v1/transactions", dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          decimal.NewFromInt(500),
		TargetAccountID: "acc-main",
	}, s.staffToken)
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var result dto.TransactionResultResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(s.T(), domain.Completed, result.Transaction.Status)
	require.Len(s.T(), result.Accounts, 1)
	assert.True(s.T(), result.Accounts[0].Balance.Equal(decimal.NewFromInt(1500)))

	w = s.do(http.MethodGet, "/api/v1/transactions/"+result.Transaction.TransactionID, nil, s.staffToken)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/transactions/"+result.Transaction.TransactionID, nil, s.staffToken)
	assert.Equal(s.T(), http.StatusNoContent, w.Code)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(decimal.NewFromInt(1000)))

	// Reversing twice conflicts.
	w = s.do(http.MethodDelete, "/api/v1/transactions/"+result.Transaction.TransactionID, nil, s.staffToken)
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *HandlersTestSuite) TestOverdraftMapsTo422() {
	s.seedAccount("acc-main", 100)

	w := s.do(http.MethodPost, "/api/v1/transactions", dto.CreateTransactionRequest{
		TransactionType: domain.Debit,
		Amount:          decimal.NewFromInt(500),
		TargetAccountID: "acc-main",
	}, s.staffToken)
	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlersTestSuite) TestUnknownTransactionMapsTo404() {
	w := s.do(http.MethodGet, "/api/v1/transactions/missing", nil, s.staffToken)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestDraftCompleteOverHTTP() {
	s.seedAccount("acc-main", 0)

	w := s.do(http.MethodPost, "/api/v1/transactions", dto.CreateTransactionRequest{
		TransactionType: domain.Credit,
		Amount:          decimal.NewFromInt(700),
		TargetAccountID: "acc-main",
		Draft:           true,
	}, s.staffToken)
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var result dto.TransactionResultResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(s.T(), domain.Pending, result.Transaction.Status)
	assert.True(s.T(), s.store.AccountBalance("acc-main").IsZero())

	w = s.do(http.MethodPost, "/api/v1/transactions/"+result.Transaction.TransactionID+"/complete", nil, s.staffToken)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.True(s.T(), s.store.AccountBalance("acc-main").Equal(decimal.NewFromInt(700)))
}

func (s *HandlersTestSuite) TestVerifyLedgerIsAdminOnly() {
	w := s.do(http.MethodPost, "/api/v1/admin/verify-ledger", nil, s.staffToken)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/admin/verify-ledger", nil, s.adminToken)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var report dto.LedgerVerifyReport
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(s.T(), report.Clean)
}

func (s *HandlersTestSuite) TestCreateUserIsAdminOnly() {
	req := dto.CreateUserRequest{Username: "newbie", Name: "New", Password: "password-123"}

	w := s.do(http.MethodPost, "/api/v1/users", req, s.staffToken)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/users", req, s.adminToken)
	require.Equal(s.T(), http.StatusCreated, w.Code)

	var created dto.UserResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(s.T(), domain.RoleStaff, created.Role)
}
