package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gearrent-backend/internal/domain"
	"gearrent-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type testServer struct {
	router  http.Handler
	tokens  security.TokenManager
	users   *MockUserService
	catalog *MockCatalogService
	txs     *MockTransactionService
	promos  *MockPromotionService
	member  string
	other   string
	staff   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		tokens:  security.NewTokenManager(testSecret, time.Hour),
		users:   &MockUserService{},
		catalog: &MockCatalogService{},
		txs:     &MockTransactionService{},
		promos:  &MockPromotionService{},
	}
	s.router = NewRouter(Handlers{
		Auth:         NewAuthHandler(s.users),
		Users:        NewUserHandler(s.users),
		Catalog:      NewCatalogHandler(s.catalog, nil),
		Transactions: NewTransactionHandler(s.txs),
		Promotions:   NewPromotionHandler(s.promos),
	}, s.tokens)

	s.member = s.token(t, 10, domain.UserRoleMember)
	s.other = s.token(t, 11, domain.UserRoleMember)
	s.staff = s.token(t, 2, domain.UserRoleWarehouse)
	return s
}

func (s *testServer) token(t *testing.T, userID int32, role domain.UserRole) string {
	t.Helper()
	tok, _, err := s.tokens.GenerateAccessToken(userID, "u@example.com", string(role))
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	t.Run("MissingToken", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/transactions", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthenticated", decodeError(t, rec).Code)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/transactions", "not-a-jwt", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MemberForbiddenOnAdminRoute", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/items", s.member, `{}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		s.catalog.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
	})

	t.Run("WarehouseForbiddenOnAdminRoute", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/transactions/5", s.staff, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("PublicRouteWithoutToken", func(t *testing.T) {
		s.catalog.On("GetItem", mock.Anything, int32(3)).Return(&domain.Item{ID: 3, Name: "Tenda Dome 4P"}, nil).Once()

		rec := s.do(http.MethodGet, "/api/items/3", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Tenda Dome 4P")
	})
}

func TestUpdateItem(t *testing.T) {
	t.Run("StockFieldRejected", func(t *testing.T) {
		s := newTestServer(t)
		admin := s.token(t, 1, domain.UserRoleAdmin)

		rec := s.do(http.MethodPut, "/api/items/7", admin, `{"name":"Tenda Dome 4P","price_per_day":90000,"stock":0}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		s.catalog.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
	})

	t.Run("PartialFields", func(t *testing.T) {
		s := newTestServer(t)
		admin := s.token(t, 1, domain.UserRoleAdmin)
		s.catalog.On("UpdateItem", mock.Anything, mock.MatchedBy(func(it *domain.Item) bool {
			return it.ID == 7 && it.Name == "Tenda Dome 4P" && it.Status == ""
		})).Run(func(args mock.Arguments) {
			it := args.Get(1).(*domain.Item)
			it.Stock = 4
			it.Status = domain.ItemStatusMaintenance
		}).Return(nil).Once()

		rec := s.do(http.MethodPut, "/api/items/7", admin, `{"name":"Tenda Dome 4P","price_per_day":90000}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"maintenance"`)
		s.catalog.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	t.Run("Success", func(t *testing.T) {
		expires := time.Date(2024, 12, 10, 10, 0, 0, 0, time.UTC)
		s.users.On("Login", mock.Anything, "budi@example.com", "rahasia123").
			Return("tok", expires, &domain.User{ID: 10, Email: "budi@example.com"}, nil).Once()

		rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"budi@example.com","password":"rahasia123"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body loginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "tok", body.AccessToken)
		assert.Equal(t, int32(10), body.User.ID)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		s.users.On("Login", mock.Anything, "budi@example.com", "salah").
			Return("", time.Time{}, nil, domain.ErrInvalidCredentials).Once()

		rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"budi@example.com","password":"salah"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", decodeError(t, rec).Code)
	})

	t.Run("PendingAccount", func(t *testing.T) {
		s.users.On("Login", mock.Anything, "baru@example.com", "rahasia123").
			Return("", time.Time{}, nil, domain.ErrAccountNotApproved).Once()

		rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"baru@example.com","password":"rahasia123"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("UnknownField", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"budi@example.com","password":"x","otp":"1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateTransaction(t *testing.T) {
	start := time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		s := newTestServer(t)
		lines := []domain.LineRequest{{ItemID: 3, Quantity: 2}}
		s.txs.On("CreateTransaction", mock.Anything, int32(10), start, end, lines, "HEMAT10").
			Return(&domain.Transaction{ID: 1, Code: "TRX-20241209-0001", Total: 300000}, nil).Once()

		rec := s.do(http.MethodPost, "/api/transactions", s.member,
			`{"start_date":"2024-12-10","end_date":"2024-12-13","items":[{"item_id":3,"quantity":2}],"promo_code":"HEMAT10"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "TRX-20241209-0001")
		s.txs.AssertExpectations(t)
	})

	validation := []struct {
		name string
		body string
	}{
		{"NoItems", `{"start_date":"2024-12-10","end_date":"2024-12-13","items":[]}`},
		{"ZeroQuantity", `{"start_date":"2024-12-10","end_date":"2024-12-13","items":[{"item_id":3,"quantity":0}]}`},
		{"BadDate", `{"start_date":"10/12/2024","end_date":"2024-12-13","items":[{"item_id":3,"quantity":1}]}`},
		{"MissingEndDate", `{"start_date":"2024-12-10","items":[{"item_id":3,"quantity":1}]}`},
		{"MalformedJSON", `{"start_date":`},
	}
	for _, tc := range validation {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(http.MethodPost, "/api/transactions", s.member, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			s.txs.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	serviceErrors := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"InsufficientStock", domain.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
		{"MissingPrice", domain.ErrInvalidPrice, http.StatusBadRequest, "invalid_price"},
		{"DateRange", domain.ErrInvalidDateRange, http.StatusBadRequest, "invalid_date_range"},
		{"UnknownItem", domain.ErrItemNotFound, http.StatusNotFound, "not_found"},
		{"PromoBelowMinimum", domain.ErrBelowMinimumSpend, http.StatusBadRequest, "below_minimum_spend"},
		{"Unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range serviceErrors {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.txs.On("CreateTransaction", mock.Anything, int32(10), start, end, mock.Anything, "").
				Return(nil, tc.err).Once()

			rec := s.do(http.MethodPost, "/api/transactions", s.member,
				`{"start_date":"2024-12-10","end_date":"2024-12-13","items":[{"item_id":3,"quantity":2}]}`)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Code)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Error)
			}
		})
	}
}

func TestGetTransaction_Ownership(t *testing.T) {
	s := newTestServer(t)
	owned := &domain.Transaction{ID: 7, UserID: 10, Status: domain.TransactionStatusAwaitingPayment}
	s.txs.On("GetTransaction", mock.Anything, int32(7)).Return(owned, nil)

	t.Run("Owner", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/transactions/7", s.member, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("OtherMemberSeesNotFound", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/transactions/7", s.other, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Staff", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/transactions/7", s.staff, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestListTransactions_MemberScopedToSelf(t *testing.T) {
	s := newTestServer(t)
	want := domain.TransactionFilter{
		UserID:   10,
		Statuses: []domain.TransactionStatus{domain.TransactionStatusBeingRented, domain.TransactionStatusAwaitingReturn},
	}
	s.txs.On("ListTransactions", mock.Anything, want).Return([]domain.Transaction{}, 0, nil).Once()

	rec := s.do(http.MethodGet, "/api/transactions?user_id=11&status=being_rented,awaiting_return", s.member, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	s.txs.AssertExpectations(t)
}

func TestListTransactions_StaffFiltersByUser(t *testing.T) {
	s := newTestServer(t)
	s.txs.On("ListTransactions", mock.Anything, domain.TransactionFilter{UserID: 11, Page: 2, PageSize: 10}).
		Return([]domain.Transaction{{ID: 3}}, 11, nil).Once()

	rec := s.do(http.MethodGet, "/api/transactions?user_id=11&page=2&page_size=10", s.staff, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body listResponse[domain.Transaction]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int32(11), body.Total)
	assert.Len(t, body.Data, 1)
}

func TestCancelTransaction(t *testing.T) {
	t.Run("MemberBeforeHandover", func(t *testing.T) {
		s := newTestServer(t)
		s.txs.On("GetTransaction", mock.Anything, int32(7)).
			Return(&domain.Transaction{ID: 7, UserID: 10, Status: domain.TransactionStatusAwaitingConfirmation}, nil)
		s.txs.On("Cancel", mock.Anything, int32(10), int32(7)).
			Return(&domain.Transaction{ID: 7, UserID: 10, Status: domain.TransactionStatusCancelled}, nil).Once()

		rec := s.do(http.MethodPost, "/api/transactions/7/cancel", s.member, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
	})

	t.Run("MemberAfterHandoverForbidden", func(t *testing.T) {
		s := newTestServer(t)
		s.txs.On("GetTransaction", mock.Anything, int32(7)).
			Return(&domain.Transaction{ID: 7, UserID: 10, Status: domain.TransactionStatusBeingRented}, nil)
		s.txs.On("Cancel", mock.Anything, int32(10), int32(7)).Return(nil, domain.ErrUnauthorized).Once()

		rec := s.do(http.MethodPost, "/api/transactions/7/cancel", s.member, "")

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("OtherMemberNotFound", func(t *testing.T) {
		s := newTestServer(t)
		s.txs.On("GetTransaction", mock.Anything, int32(7)).
			Return(&domain.Transaction{ID: 7, UserID: 99, Status: domain.TransactionStatusAwaitingPayment}, nil)

		rec := s.do(http.MethodPost, "/api/transactions/7/cancel", s.member, "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		s.txs.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StaffAfterHandover", func(t *testing.T) {
		s := newTestServer(t)
		s.txs.On("GetTransaction", mock.Anything, int32(7)).
			Return(&domain.Transaction{ID: 7, UserID: 10, Status: domain.TransactionStatusBeingRented}, nil)
		s.txs.On("Cancel", mock.Anything, int32(0), int32(7)).
			Return(&domain.Transaction{ID: 7, Status: domain.TransactionStatusCancelled}, nil).Once()

		rec := s.do(http.MethodPost, "/api/transactions/7/cancel", s.staff, "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("TerminalIsConflict", func(t *testing.T) {
		s := newTestServer(t)
		s.txs.On("GetTransaction", mock.Anything, int32(7)).
			Return(&domain.Transaction{ID: 7, UserID: 10, Status: domain.TransactionStatusCompleted}, nil)
		s.txs.On("Cancel", mock.Anything, int32(10), int32(7)).Return(nil, domain.ErrInvalidTransition).Once()

		rec := s.do(http.MethodPost, "/api/transactions/7/cancel", s.member, "")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("CompletionWithLateFeeOverride", func(t *testing.T) {
		s := newTestServer(t)
		fee := int64(25000)
		s.txs.On("UpdateStatus", mock.Anything, int32(7), domain.TransactionStatusCompleted, &fee).
			Return(&domain.Transaction{ID: 7, Status: domain.TransactionStatusCompleted, LateFee: fee}, nil).Once()

		rec := s.do(http.MethodPut, "/api/transactions/7/status", s.staff, `{"status":"completed","late_fee":25000}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		s.txs.AssertExpectations(t)
	})

	t.Run("LateFeeOutsideCompletion", func(t *testing.T) {
		s := newTestServer(t)
		fee := int64(25000)
		s.txs.On("UpdateStatus", mock.Anything, int32(7), domain.TransactionStatusCancelled, &fee).
			Return(nil, fmt.Errorf("%w: late_fee only applies when completing a transaction", domain.ErrValidation)).Once()

		rec := s.do(http.MethodPut, "/api/transactions/7/status", s.staff, `{"status":"cancelled","late_fee":25000}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodPut, "/api/transactions/7/status", s.staff, `{"status":"lost"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NegativeLateFee", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodPut, "/api/transactions/7/status", s.staff, `{"status":"completed","late_fee":-1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		s := newTestServer(t)
		s.txs.On("UpdateStatus", mock.Anything, int32(7), domain.TransactionStatusBeingRented, (*int64)(nil)).
			Return(nil, domain.ErrInvalidTransition).Once()

		rec := s.do(http.MethodPut, "/api/transactions/7/status", s.staff, `{"status":"being_rented"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "invalid_transition", decodeError(t, rec).Code)
	})
}

func TestInspect(t *testing.T) {
	s := newTestServer(t)
	conditions := map[int32]domain.InspectionCondition{
		21: domain.ConditionGood,
		22: domain.ConditionHeavyDamage,
	}
	s.txs.On("Inspect", mock.Anything, int32(7), conditions, (*int64)(nil)).
		Return(&domain.Transaction{ID: 7, Status: domain.TransactionStatusCompleted}, nil).Once()

	rec := s.do(http.MethodPost, "/api/transactions/7/inspection", s.staff,
		`{"lines":[{"line_id":21,"condition":"baik"},{"line_id":22,"condition":"rusak_berat"}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/transactions/7/inspection", s.staff,
		`{"lines":[{"line_id":21,"condition":"hilang"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/transactions/7/inspection", s.member, `{"lines":[]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.txs.AssertExpectations(t)
}

func TestValidatePromotion(t *testing.T) {
	s := newTestServer(t)

	t.Run("Success", func(t *testing.T) {
		s.promos.On("ValidatePromotion", mock.Anything, "hemat10", int64(300000)).
			Return(&domain.Promotion{Code: "HEMAT10"}, int64(30000), nil).Once()

		rec := s.do(http.MethodGet, "/api/promotions/hemat10/validate?subtotal=300000", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body validatePromotionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(30000), body.Discount)
	})

	t.Run("MissingSubtotal", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/promotions/hemat10/validate", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Expired", func(t *testing.T) {
		s.promos.On("ValidatePromotion", mock.Anything, "LAMA", int64(100000)).
			Return(nil, int64(0), domain.ErrPromoNotFound).Once()

		rec := s.do(http.MethodGet, "/api/promotions/LAMA/validate?subtotal=100000", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	s.users.On("GetProfile", mock.Anything, int32(10)).Return(&domain.User{ID: 10, Name: "Budi"}, nil).Once()

	rec := s.do(http.MethodGet, "/api/users/me", s.member, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Budi")
}
