package category_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-tracker/internal/transport"
)

var _ = Describe("Category Handler", func() {
	var (
		repo    *MockRepository
		handler *category.Handler
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = NewMockRepository()
		handler = category.NewHandler(transport.NewBaseHandler(lg), category.NewService(repo, lg))
	})

	It("returns the caller's breakdown", func() {
		repo.totals[7] = []*categoryDatamodel.CategoryTotal{{Name: "rent", Total: 900, PaidTotal: 900, Count: 1}}
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		req = req.WithContext(auth.WithUser(context.Background(), &auth.User{ID: 7}))
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var body category.CategoriesResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Categories).To(ConsistOf(category.Category{Name: "rent", Total: 900, Paid: 900, Count: 1}))
	})

	It("renders an empty list as []", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		req = req.WithContext(auth.WithUser(context.Background(), &auth.User{ID: 8}))
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(w.Body.String())).To(Equal(`{"categories":[]}`))
	})

	It("requires an authenticated caller", func() {
		w := httptest.NewRecorder()
		handler.GetCategories(w, httptest.NewRequest(http.MethodGet, "/categories", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
