package main_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/expense-tracker/cmd"
	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/auth"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/core/storage"
	"github.com/frahmantamala/expense-tracker/internal/core/storage/storagetest"
	"github.com/frahmantamala/expense-tracker/internal/transport/swagger"
)

const testSecret = "e2e-secret-that-is-at-least-32-characters"

type errorBody struct {
	Error struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("Expense Tracker API", func() {
	var (
		db     *storage.DB
		bus    *events.EventBus
		server *httptest.Server
	)

	BeforeEach(func() {
		var err error
		db, err = storagetest.NewSQLite()
		Expect(err).NotTo(HaveOccurred())

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(lg)
		cfg := &internal.Config{
			Database: internal.DatabaseConfig{QueryTimeout: 5 * time.Second},
			Security: internal.SecurityConfig{
				JWTSecret:           testSecret,
				AccessTokenDuration: time.Hour,
				BCryptCost:          bcrypt.MinCost,
			},
		}
		server = httptest.NewServer(cmd.NewRouter(&cmd.Dependencies{
			Config: cfg,
			DB:     db,
			Events: bus,
			Logger: lg,
		}))
	})

	AfterEach(func() {
		server.Close()
		Expect(bus.Wait(context.Background())).To(Succeed())
		Expect(db.Close()).To(Succeed())
	})

	do := func(method, path, token, body string) *http.Response {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, server.URL+path, reader)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(resp.Body.Close)
		return resp
	}

	decode := func(resp *http.Response, into any) {
		Expect(json.NewDecoder(resp.Body).Decode(into)).To(Succeed())
	}

	errorCode := func(resp *http.Response) string {
		var body errorBody
		decode(resp, &body)
		return body.Error.Code
	}

	register := func(name, email string, budget float64) int64 {
		body, _ := json.Marshal(map[string]any{"name": name, "email": email, "password": "s3cret-pass", "budget": budget})
		resp := do(http.MethodPost, "/auth/register", "", string(body))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		var u map[string]any
		decode(resp, &u)
		Expect(u).NotTo(HaveKey("password_hash"))
		Expect(u).NotTo(HaveKey("password"))
		return int64(u["id"].(float64))
	}

	login := func(email string) string {
		form := url.Values{"username": {email}, "password": {"s3cret-pass"}}
		resp, err := http.PostForm(server.URL+"/auth/login", form)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var tok auth.TokenResponse
		decode(resp, &tok)
		Expect(tok.TokenType).To(Equal("bearer"))
		return tok.AccessToken
	}

	createExpense := func(token, body string) map[string]any {
		resp := do(http.MethodPost, "/expenses/", token, body)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		var e map[string]any
		decode(resp, &e)
		return e
	}

	idPath := func(e map[string]any) string {
		return "/expenses/" + jsonID(e["id"])
	}

	It("reports that the API is running", func() {
		resp := do(http.MethodGet, "/", "", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var body map[string]string
		decode(resp, &body)
		Expect(body["message"]).To(Equal("Expense Tracker API is running"))
	})

	It("reports a healthy database", func() {
		resp := do(http.MethodGet, "/health", "", "")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	Describe("registration and login", func() {
		It("rejects a second registration with the same email", func() {
			register("Alice", "alice@example.com", 100)

			resp := do(http.MethodPost, "/auth/register", "",
				`{"name":"Alice Again","email":" ALICE@example.com ","password":"other","budget":5}`)
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
			Expect(errorCode(resp)).To(Equal(string(internal.ErrCodeEmailTaken)))
		})

		It("rejects a wrong password with 401", func() {
			register("Alice", "alice@example.com", 100)

			resp, err := http.PostForm(server.URL+"/auth/login", url.Values{"username": {"alice@example.com"}, "password": {"nope"}})
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("rejects an invalid name with 400", func() {
			resp := do(http.MethodPost, "/auth/register", "", `{"name":"Al1ce","email":"a@b.c","password":"pw"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("authentication", func() {
		It("returns 401 without a token", func() {
			resp := do(http.MethodGet, "/expenses/user", "", "")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Bearer"))
		})

		It("returns 401 for an expired token", func() {
			id := register("Alice", "alice@example.com", 100)
			expired, _, err := auth.NewJWTTokenGenerator(testSecret, -time.Minute).GenerateAccessToken(id)
			Expect(err).NotTo(HaveOccurred())

			resp := do(http.MethodGet, "/users/me", expired, "")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(resp)).To(Equal(string(internal.ErrCodeTokenExpired)))
		})

		It("returns 401 for a token signed with another secret", func() {
			id := register("Alice", "alice@example.com", 100)
			forged, _, err := auth.NewJWTTokenGenerator("another-secret-that-is-32-characters!!", time.Hour).GenerateAccessToken(id)
			Expect(err).NotTo(HaveOccurred())

			resp := do(http.MethodGet, "/users/me", forged, "")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("expenses", func() {
		var aliceID int64
		var alice, bob string

		BeforeEach(func() {
			aliceID = register("Alice", "alice@example.com", 80)
			register("Bob", "bob@example.com", 50)
			alice = login("alice@example.com")
			bob = login("bob@example.com")
		})

		It("ignores a client supplied user_id on create", func() {
			e := createExpense(alice, `{"amount": 12.5, "user_id": 999}`)
			Expect(jsonID(e["user_id"])).To(Equal(jsonID(float64(aliceID))))
			Expect(e["paid"]).To(BeFalse())
		})

		It("rejects a create without an amount", func() {
			resp := do(http.MethodPost, "/expenses/", alice, `{"paid": true}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("lists only the caller's expenses, newest first", func() {
			createExpense(alice, `{"amount": 1}`)
			createExpense(alice, `{"amount": 2}`)
			createExpense(bob, `{"amount": 3}`)

			resp := do(http.MethodGet, "/expenses/user", alice, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var list []map[string]any
			decode(resp, &list)
			Expect(list).To(HaveLen(2))
			Expect(list[0]["amount"]).To(Equal(2.0))
			Expect(list[1]["amount"]).To(Equal(1.0))
		})

		It("forbids other users from reading, changing or deleting an expense", func() {
			e := createExpense(alice, `{"amount": 10}`)

			Expect(do(http.MethodGet, idPath(e), bob, "").StatusCode).To(Equal(http.StatusForbidden))
			Expect(do(http.MethodPut, idPath(e), bob, `{"amount": 1}`).StatusCode).To(Equal(http.StatusForbidden))
			Expect(do(http.MethodPatch, idPath(e)+"/toggle-paid", bob, "").StatusCode).To(Equal(http.StatusForbidden))
			Expect(do(http.MethodDelete, idPath(e), bob, "").StatusCode).To(Equal(http.StatusForbidden))

			resp := do(http.MethodGet, idPath(e), alice, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var got map[string]any
			decode(resp, &got)
			Expect(got["amount"]).To(Equal(10.0))
		})

		It("returns 404 for a missing expense and 400 for a non-numeric id", func() {
			Expect(do(http.MethodGet, "/expenses/4242", alice, "").StatusCode).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodGet, "/expenses/abc", alice, "").StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("restores paid after two toggles", func() {
			e := createExpense(alice, `{"amount": 10, "paid": false}`)

			var once, twice map[string]any
			decode(do(http.MethodPatch, idPath(e)+"/toggle-paid", alice, ""), &once)
			decode(do(http.MethodPatch, idPath(e)+"/toggle-paid", alice, ""), &twice)
			Expect(once["paid"]).To(BeTrue())
			Expect(twice["paid"]).To(BeFalse())
		})

		It("updates only the supplied fields", func() {
			e := createExpense(alice, `{"amount": 42, "paid": true, "description": "lunch", "category": "food"}`)

			resp := do(http.MethodPut, idPath(e), alice, `{"category": "work", "user_id": 999}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var got map[string]any
			decode(resp, &got)
			Expect(got["category"]).To(Equal("work"))
			Expect(got["amount"]).To(Equal(42.0))
			Expect(got["description"]).To(Equal("lunch"))
			Expect(got["paid"]).To(BeTrue())
			Expect(jsonID(got["user_id"])).To(Equal(jsonID(float64(aliceID))))
		})

		It("clears description on explicit null and rejects null amount", func() {
			e := createExpense(alice, `{"amount": 5, "description": "coffee"}`)

			var got map[string]any
			decode(do(http.MethodPut, idPath(e), alice, `{"description": null}`), &got)
			Expect(got["description"]).To(BeNil())
			Expect(got["amount"]).To(Equal(5.0))

			Expect(do(http.MethodPut, idPath(e), alice, `{"amount": null}`).StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("deletes an expense", func() {
			e := createExpense(alice, `{"amount": 5}`)

			Expect(do(http.MethodDelete, idPath(e), alice, "").StatusCode).To(Equal(http.StatusNoContent))
			Expect(do(http.MethodGet, idPath(e), alice, "").StatusCode).To(Equal(http.StatusNotFound))
		})

		Describe("summary", func() {
			summary := func(token string) map[string]any {
				resp := do(http.MethodGet, "/users/me/summary", token, "")
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var s map[string]any
				decode(resp, &s)
				return s
			}

			It("is on track with no expenses", func() {
				s := summary(alice)
				Expect(s["user"]).To(Equal("Alice"))
				Expect(s["total_expenses"]).To(Equal(0.0))
				Expect(s["total_paid"]).To(Equal(0.0))
				Expect(s["remaining_budget"]).To(Equal(80.0))
				Expect(s["status"]).To(Equal("On track"))
			})

			It("is over budget when paid expenses exceed the budget", func() {
				createExpense(alice, `{"amount": 100, "paid": true}`)
				createExpense(alice, `{"amount": 50, "paid": false}`)

				s := summary(alice)
				Expect(s["total_expenses"]).To(Equal(150.0))
				Expect(s["total_paid"]).To(Equal(100.0))
				Expect(s["remaining_budget"]).To(Equal(-20.0))
				Expect(s["paid_ratio"]).To(Equal("1 / 2"))
				Expect(s["status"]).To(Equal("Over budget"))
			})

			It("is on track when the remaining budget is exactly zero", func() {
				createExpense(alice, `{"amount": 80, "paid": true}`)

				s := summary(alice)
				Expect(s["remaining_budget"]).To(Equal(0.0))
				Expect(s["status"]).To(Equal("On track"))
			})
		})

		It("groups the caller's expenses by category", func() {
			createExpense(alice, `{"amount": 10, "paid": true, "category": "food"}`)
			createExpense(alice, `{"amount": 5, "category": "food"}`)
			createExpense(alice, `{"amount": 7}`)
			createExpense(bob, `{"amount": 99, "category": "food"}`)

			resp := do(http.MethodGet, "/categories", alice, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body struct {
				Categories []struct {
					Name  string  `json:"name"`
					Total float64 `json:"total"`
					Paid  float64 `json:"paid"`
					Count int64   `json:"count"`
				} `json:"categories"`
			}
			decode(resp, &body)
			Expect(body.Categories).To(HaveLen(2))
			Expect(body.Categories[0].Name).To(Equal("food"))
			Expect(body.Categories[0].Total).To(Equal(15.0))
			Expect(body.Categories[0].Paid).To(Equal(10.0))
			Expect(body.Categories[1].Name).To(Equal("uncategorized"))
			Expect(body.Categories[1].Count).To(Equal(int64(1)))
		})

		It("removes the user's expenses when the user is deleted", func() {
			createExpense(alice, `{"amount": 1}`)
			createExpense(alice, `{"amount": 2}`)

			Expect(do(http.MethodDelete, "/users/me", alice, "").StatusCode).To(Equal(http.StatusNoContent))

			var remaining int64
			Expect(db.Gorm.Model(&expenseDatamodel.Expense{}).Where("user_id = ?", aliceID).Count(&remaining).Error).To(Succeed())
			Expect(remaining).To(BeZero())
			Expect(do(http.MethodGet, "/users/me", alice, "").StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})
})

var _ = Describe("OpenAPI document", func() {
	It("is valid and documents every route", func() {
		raw, err := os.ReadFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		spec, err := swagger.Parse(context.Background(), raw)
		Expect(err).NotTo(HaveOccurred())

		routes := []struct{ method, path string }{
			{http.MethodPost, "/auth/register"},
			{http.MethodPost, "/auth/login"},
			{http.MethodGet, "/users/me"},
			{http.MethodPut, "/users/me"},
			{http.MethodDelete, "/users/me"},
			{http.MethodGet, "/users/me/summary"},
			{http.MethodPost, "/expenses/"},
			{http.MethodGet, "/expenses/user"},
			{http.MethodGet, "/expenses/{id}"},
			{http.MethodPut, "/expenses/{id}"},
			{http.MethodDelete, "/expenses/{id}"},
			{http.MethodPatch, "/expenses/{id}/toggle-paid"},
			{http.MethodGet, "/categories"},
		}
		for _, r := range routes {
			Expect(spec.Documents(r.method, r.path)).To(BeTrue(), "%s %s", r.method, r.path)
		}
	})
})

func jsonID(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
