package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rosaarteira/storefront/internal/kvstore"
	"github.com/rosaarteira/storefront/internal/models"
	"github.com/rosaarteira/storefront/internal/session"
	"github.com/rosaarteira/storefront/internal/service/token"
	"github.com/rosaarteira/storefront/internal/store"
)

type testEnv struct {
	echo     *echo.Echo
	store    *store.Store
	sessions *session.Store
	tokens   *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	kv, err := kvstore.Open(db)
	require.NoError(t, err)

	e := echo.New()
	e.Validator = NewValidator()

	return &testEnv{
		echo:     e,
		store:    store.New(kv),
		sessions: session.NewStore(kv),
		tokens:   &token.Service{KV: kv, JWTSecret: []byte("test"), RefreshSecret: []byte("test-refresh")},
	}
}

// newJSONContext builds an echo context carrying a JSON body.
func (env *testEnv) newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}

// asLoggedIn attaches the session the auth middleware would have set.
func asLoggedIn(c echo.Context, sess session.Session) {
	c.Set("session", &sess)
}

func testSession() session.Session {
	return session.Session{UserID: "user-1", Name: "Maria", Email: "maria@example.com", Role: models.RoleUser}
}

func seedTestProduct(t *testing.T, env *testEnv, name, price string, stock *int) models.Product {
	t.Helper()

	p, err := env.store.Catalog.Create(context.Background(), testSession(), store.CreateProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return *p
}

func seedTestAddress(t *testing.T, env *testEnv, userID string) models.Address {
	t.Helper()

	addr, err := env.store.Addresses.Save(context.Background(), userID, models.Address{
		Street:  "Rua das Flores",
		Number:  "100",
		City:    "Curitiba",
		State:   "PR",
		ZipCode: "80000-000",
	})
	require.NoError(t, err)
	return *addr
}

func intPtr(v int) *int { return &v }
