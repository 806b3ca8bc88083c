package expense_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport"
)

var _ = Describe("Expense Handler", func() {
	var (
		repo   *mockExpenseRepository
		router chi.Router
		caller int64
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = newMockExpenseRepository()
		handler := &expense.Handler{
			BaseHandler: transport.NewBaseHandler(lg),
			Service:     expense.NewService(repo, nil, lg),
		}
		caller = 1

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if caller != 0 {
					r = r.WithContext(auth.WithUser(r.Context(), &auth.User{ID: caller}))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Post("/expenses/", handler.CreateExpense)
		router.Get("/expenses/user", handler.GetUserExpenses)
		router.Get("/expenses/{id}", handler.GetExpense)
		router.Put("/expenses/{id}", handler.UpdateExpense)
		router.Patch("/expenses/{id}/toggle-paid", handler.TogglePaid)
		router.Delete("/expenses/{id}", handler.DeleteExpense)
		router.Get("/users/me/summary", handler.GetSummary)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	seed := func(userID int64, amount float64, paid bool) *expense.Expense {
		e := &expense.Expense{UserID: userID, Amount: amount, Paid: paid}
		Expect(repo.Create(context.Background(), e)).To(Succeed())
		return e
	}

	It("POST /expenses/ creates an expense owned by the caller, ignoring user_id", func() {
		w := do(http.MethodPost, "/expenses/", `{"amount": 25.5, "paid": true, "user_id": 2, "description": "books"}`)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var e expense.Expense
		Expect(json.Unmarshal(w.Body.Bytes(), &e)).To(Succeed())
		Expect(e.UserID).To(Equal(int64(1)))
		Expect(e.Amount).To(Equal(25.5))
		Expect(e.Paid).To(BeTrue())
		Expect(*e.Description).To(Equal("books"))
	})

	It("POST /expenses/ without an amount is 400", func() {
		w := do(http.MethodPost, "/expenses/", `{"paid": true}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
	})

	It("POST /expenses/ with malformed JSON is 400", func() {
		w := do(http.MethodPost, "/expenses/", `{"amount":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_REQUEST_BODY"))
	})

	It("rejects unauthenticated requests with a bearer challenge", func() {
		caller = 0
		w := do(http.MethodGet, "/expenses/user", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
	})

	It("GET /expenses/user returns a JSON array of the caller's expenses", func() {
		seed(1, 10, false)
		seed(2, 20, false)

		w := do(http.MethodGet, "/expenses/user", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var list []expense.Expense
		Expect(json.Unmarshal(w.Body.Bytes(), &list)).To(Succeed())
		Expect(list).To(HaveLen(1))
		Expect(list[0].UserID).To(Equal(int64(1)))
	})

	It("GET /expenses/user returns [] when there is nothing to list", func() {
		w := do(http.MethodGet, "/expenses/user", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(w.Body.String())).To(Equal("[]"))
	})

	DescribeTable("GET /expenses/user rejects bad paging",
		func(query string) {
			w := do(http.MethodGet, "/expenses/user?"+query, "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		},
		Entry("zero limit", "limit=0"),
		Entry("limit above 100", "limit=101"),
		Entry("non-numeric limit", "limit=ten"),
		Entry("negative offset", "offset=-1"),
	)

	It("GET /expenses/{id} with a non-numeric id is 400", func() {
		w := do(http.MethodGet, "/expenses/abc", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_ID"))
	})

	It("GET /expenses/{id} for a missing expense is 404", func() {
		w := do(http.MethodGet, "/expenses/77", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("GET /expenses/{id} for someone else's expense is 403", func() {
		e := seed(2, 20, false)
		w := do(http.MethodGet, "/expenses/"+itoa(e.ID), "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("PUT /expenses/{id} applies a partial update and clears on null", func() {
		e := seed(1, 10, false)
		repo.expenses[e.ID].Description = ptr("old")

		w := do(http.MethodPut, "/expenses/"+itoa(e.ID), `{"category": "travel", "description": null, "user_id": 2}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var got expense.Expense
		Expect(json.Unmarshal(w.Body.Bytes(), &got)).To(Succeed())
		Expect(*got.Category).To(Equal("travel"))
		Expect(got.Description).To(BeNil())
		Expect(got.Amount).To(Equal(10.0))
		Expect(got.UserID).To(Equal(int64(1)))
	})

	It("PATCH /expenses/{id}/toggle-paid flips paid", func() {
		e := seed(1, 10, false)
		w := do(http.MethodPatch, "/expenses/"+itoa(e.ID)+"/toggle-paid", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(repo.expenses[e.ID].Paid).To(BeTrue())
	})

	It("DELETE /expenses/{id} answers 204 with no body", func() {
		e := seed(1, 10, false)
		w := do(http.MethodDelete, "/expenses/"+itoa(e.ID), "")
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Body.Len()).To(BeZero())
		Expect(repo.expenses).NotTo(HaveKey(e.ID))
	})

	It("GET /users/me/summary returns the budget summary", func() {
		seed(1, 100, true)
		seed(1, 50, false)

		w := do(http.MethodGet, "/users/me/summary", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		var body map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("remaining_budget", -20.0))
		Expect(body).To(HaveKeyWithValue("paid_ratio", "1 / 2"))
		Expect(body).To(HaveKeyWithValue("status", "Over budget"))
	})
})
