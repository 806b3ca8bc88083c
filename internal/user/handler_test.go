package user_test

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
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/internal/user"
)

var _ = Describe("User Handler", func() {
	var (
		repo    *mockUserRepository
		handler *user.Handler
	)

	asCaller := func(req *http.Request, id int64) *http.Request {
		return req.WithContext(auth.WithUser(context.Background(), &auth.User{ID: id}))
	}

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = newMockUserRepository()
		handler = &user.Handler{
			BaseHandler: transport.NewBaseHandler(lg),
			Service:     user.NewService(repo, nil, bcrypt.MinCost, lg),
		}
	})

	It("GET /users/me returns the caller without the password hash", func() {
		req := asCaller(httptest.NewRequest(http.MethodGet, "/users/me", nil), 1)
		w := httptest.NewRecorder()

		handler.GetCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("old"))
		var body map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("email", "ada@example.com"))
		Expect(body).NotTo(HaveKey("password_hash"))
	})

	It("GET /users/me without a caller is 401", func() {
		w := httptest.NewRecorder()
		handler.GetCurrentUser(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("PUT /users/me applies a partial body", func() {
		req := asCaller(httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(`{"budget": 99.999}`)), 1)
		w := httptest.NewRecorder()

		handler.UpdateCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var u user.User
		Expect(json.Unmarshal(w.Body.Bytes(), &u)).To(Succeed())
		Expect(u.Budget).To(Equal(100.0))
		Expect(u.Name).To(Equal("Ada Lovelace"))
	})

	It("PUT /users/me rejects null for a non-nullable field", func() {
		req := asCaller(httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(`{"name": null}`)), 1)
		w := httptest.NewRecorder()

		handler.UpdateCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("NULL_NOT_ALLOWED"))
	})

	It("PUT /users/me returns 409 when the email is taken", func() {
		req := asCaller(httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(`{"email": "grace@example.com"}`)), 1)
		w := httptest.NewRecorder()

		handler.UpdateCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("DELETE /users/me returns 204", func() {
		req := asCaller(httptest.NewRequest(http.MethodDelete, "/users/me", nil), 2)
		w := httptest.NewRecorder()

		handler.DeleteCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Body.Len()).To(BeZero())
		Expect(repo.users).NotTo(HaveKey(int64(2)))
	})
})
