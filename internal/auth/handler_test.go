package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/expense-tracker/internal/transport"
)

var _ = Describe("Auth Handler", func() {
	var (
		handler  *Handler
		tokenGen *JWTTokenGenerator
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		tokenGen = NewJWTTokenGenerator(testSecret, time.Minute)
		handler = &Handler{
			BaseHandler: transport.NewBaseHandler(lg),
			Service:     NewService(newMockUserRepository(), tokenGen, bcrypt.MinCost, lg),
		}
	})

	Describe("POST /auth/register", func() {
		It("returns 201 with the user and no password", func() {
			body := `{"name":"Ada Lovelace","email":"ada@example.com","password":"s3cret","budget":80}`
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).NotTo(ContainSubstring("password"))
			var u User
			Expect(json.Unmarshal(w.Body.Bytes(), &u)).To(Succeed())
			Expect(u.Name).To(Equal("Ada Lovelace"))
			Expect(u.Budget).To(Equal(80.0))
		})

		It("returns 409 for an email that is already registered", func() {
			body := `{"name":"Someone","email":"user@example.com","password":"x","budget":0}`
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(w.Body.String()).To(ContainSubstring("EMAIL_ALREADY_REGISTERED"))
		})

		It("returns 400 for malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"name":`))
			w := httptest.NewRecorder()

			handler.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /auth/login", func() {
		It("accepts the password form", func() {
			form := url.Values{"username": {"user@example.com"}, "password": {"correct_password"}}
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp TokenResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.TokenType).To(Equal("bearer"))
			Expect(resp.AccessToken).NotTo(BeEmpty())
		})

		It("accepts JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login",
				strings.NewReader(`{"username":"user@example.com","password":"correct_password"}`))
			req.Header.Set("Content-Type", "application/json; charset=utf-8")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("returns 401 with a Bearer challenge on bad credentials", func() {
			form := url.Values{"username": {"user@example.com"}, "password": {"wrong"}}
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
			Expect(w.Body.String()).To(ContainSubstring("Incorrect email or password"))
		})
	})

	Describe("AuthMiddleware", func() {
		var reached bool
		var next http.Handler

		BeforeEach(func() {
			reached = false
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				u, ok := UserFromContext(r.Context())
				Expect(ok).To(BeTrue())
				Expect(u.ID).To(Equal(int64(1)))
				w.WriteHeader(http.StatusNoContent)
			})
		})

		It("puts the caller in the context", func() {
			token, _, _ := tokenGen.GenerateAccessToken(1)
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(w, req)

			Expect(reached).To(BeTrue())
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})

		DescribeTable("fails closed",
			func(header func() string, code string) {
				req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
				if h := header(); h != "" {
					req.Header.Set("Authorization", h)
				}
				w := httptest.NewRecorder()

				handler.AuthMiddleware(next).ServeHTTP(w, req)

				Expect(reached).To(BeFalse())
				Expect(w.Code).To(Equal(http.StatusUnauthorized))
				Expect(w.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
				Expect(w.Body.String()).To(ContainSubstring(code))
			},
			Entry("without a header", func() string { return "" }, "MISSING_TOKEN"),
			Entry("with a non-bearer scheme", func() string { return "Basic dXNlcjpwYXNz" }, "MISSING_TOKEN"),
			Entry("with a forged token", func() string { return "Bearer abc.def.ghi" }, "INVALID_TOKEN"),
			Entry("with an expired token", func() string {
				token, _, _ := NewJWTTokenGenerator(testSecret, -time.Minute).GenerateAccessToken(1)
				return "Bearer " + token
			}, "TOKEN_EXPIRED"),
			Entry("for a deleted user", func() string {
				token, _, _ := NewJWTTokenGenerator(testSecret, time.Minute).GenerateAccessToken(404)
				return "Bearer " + token
			}, "INVALID_TOKEN"),
		)
	})

	Describe("RequireUser", func() {
		It("writes 401 when no caller is present", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			w := httptest.NewRecorder()

			_, ok := RequireUser(handler.BaseHandler, w, req)

			Expect(ok).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns the caller when present", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req = req.WithContext(WithUser(context.Background(), &User{ID: 3}))
			w := httptest.NewRecorder()

			u, ok := RequireUser(handler.BaseHandler, w, req)

			Expect(ok).To(BeTrue())
			Expect(u.ID).To(Equal(int64(3)))
		})
	})
})
