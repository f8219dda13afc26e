package handlers_test

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/L33hy/cse340/internal/api"
	"github.com/L33hy/cse340/internal/auth"
	"github.com/L33hy/cse340/internal/config"
	"github.com/L33hy/cse340/internal/database"
	"github.com/L33hy/cse340/internal/services"
	"github.com/L33hy/cse340/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router http.Handler
	db     *sql.DB
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	renderer, err := view.NewTemplateRenderer()
	require.NoError(t, err)

	tokens := auth.NewTokenService(secret)
	router := api.NewRouter(
		services.NewAccountService(db),
		services.NewActivityService(db),
		tokens,
		auth.NewCookieManager(config.Development),
		renderer,
		view.StaticNav,
		view.NewFlash(),
	)
	return &testEnv{router: router, db: db, tokens: tokens}
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, first, last, email, password string) {
	t.Helper()
	rec := e.postForm("/account/register", url.Values{
		"account_firstname": {first},
		"account_lastname":  {last},
		"account_email":     {email},
		"account_password":  {password},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := e.postForm("/account/login", url.Values{
		"account_email":    {email},
		"account_password": {password},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	return cookie
}

// sessionCookie returns the jwt cookie set on the response, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

func (e *testEnv) accountID(t *testing.T, email string) int {
	t.Helper()
	var id int
	err := e.db.QueryRow("SELECT account_id FROM account WHERE account_email = ?", email).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t, "test-secret")

	rec := env.postForm("/account/register", url.Values{
		"account_firstname": {"Ann"},
		"account_lastname":  {"Lee"},
		"account_email":     {"ann@example.com"},
		"account_password":  {"Secret123"},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	// html/template escapes the apostrophe in "you're", so match around it.
	assert.Contains(t, rec.Body.String(), "registered Ann. Please log in.")
	// Success lands the user on the login form.
	assert.Contains(t, rec.Body.String(), `action="/account/login"`)

	// The stored password is hashed, never plaintext.
	var storedHash string
	err := env.db.QueryRow("SELECT account_password FROM account WHERE account_email = ?",
		"ann@example.com").Scan(&storedHash)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", storedHash)
	assert.True(t, auth.CheckPassword("Secret123", storedHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "ann@example.com", "Secret123")

	rec := env.postForm("/account/register", url.Values{
		"account_firstname": {"Bob"},
		"account_lastname":  {"Ray"},
		"account_email":     {"ann@example.com"},
		"account_password":  {"Other456"},
	})

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sorry, the registration failed.")

	// The first registration is untouched.
	var first string
	err := env.db.QueryRow("SELECT account_firstname FROM account WHERE account_email = ?",
		"ann@example.com").Scan(&first)
	require.NoError(t, err)
	assert.Equal(t, "Ann", first)
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "ann@example.com", "Secret123")

	rec := env.postForm("/account/login", url.Values{
		"account_email":    {"ann@example.com"},
		"account_password": {"Secret123"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/", rec.Result().Header.Get("Location"))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, auth.TokenTTL, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)

	claims, err := env.tokens.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.FirstName)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "ann@example.com", "Secret123")

	wrongPassword := env.postForm("/account/login", url.Values{
		"account_email":    {"ann@example.com"},
		"account_password": {"WrongPass1"},
	})
	unknownEmail := env.postForm("/account/login", url.Values{
		"account_email":    {"nobody@example.com"},
		"account_password": {"Secret123"},
	})

	// Wrong password and unknown email must be impossible to tell apart.
	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Contains(t, wrongPassword.Body.String(), "Please check your credentials and try again.")
	assert.Contains(t, unknownEmail.Body.String(), "Please check your credentials and try again.")

	assert.Nil(t, sessionCookie(wrongPassword))
	assert.Nil(t, sessionCookie(unknownEmail))
}

func TestLogin_MissingSigningSecret(t *testing.T) {
	env := newTestEnv(t, "")
	env.register(t, "Ann", "Lee", "ann@example.com", "Secret123")

	rec := env.postForm("/account/login", url.Values{
		"account_email":    {"ann@example.com"},
		"account_password": {"Secret123"},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server configuration error. Please contact administrator.")
	assert.Nil(t, sessionCookie(rec))
	// No account data leaks into the response.
	assert.NotContains(t, rec.Body.String(), "Lee")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "ann@example.com", "Secret123")
	session := env.login(t, "ann@example.com", "Secret123")

	rec := env.get("/account/logout", session)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Result().Header.Get("Location"))

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// Any authenticated-only action afterwards is anonymous.
	after := env.get("/account/")
	assert.Equal(t, http.StatusSeeOther, after.Code)
	assert.Equal(t, "/account/login", after.Result().Header.Get("Location"))
}

func TestManagement_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, "test-secret")

	rec := env.get("/account/")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/login", rec.Result().Header.Get("Location"))
}

func TestManagement_ShowsIdentityAndFlash(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "ann@example.com", "Secret123")

	loginRec := env.postForm("/account/login", url.Values{
		"account_email":    {"ann@example.com"},
		"account_password": {"Secret123"},
	})
	require.Equal(t, http.StatusSeeOther, loginRec.Code)

	// Follow the redirect with every cookie the login set.
	rec := env.get("/account/", loginRec.Result().Cookies()...)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ann@example.com")
	assert.Contains(t, rec.Body.String(), "Welcome Ann")
}

func TestUpdateProfile_RefreshesIdentity(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "a@x.com", "Secret123")
	session := env.login(t, "a@x.com", "Secret123")
	id := env.accountID(t, "a@x.com")

	rec := env.postForm("/account/update", url.Values{
		"account_id":        {strconv.Itoa(id)},
		"account_firstname": {"Ann"},
		"account_lastname":  {"Lee"},
		"account_email":     {"b@x.com"},
	}, session)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/", rec.Result().Header.Get("Location"))

	// A fresh token is issued so the identity reflects the new email without
	// a re-login.
	refreshed := sessionCookie(rec)
	require.NotNil(t, refreshed)
	claims, err := env.tokens.Verify(refreshed.Value)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", claims.Email)

	after := env.get("/account/", refreshed)
	assert.Equal(t, http.StatusOK, after.Code)
	assert.Contains(t, after.Body.String(), "b@x.com")
}

func TestUpdateProfile_Failure(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "a@x.com", "Secret123")
	session := env.login(t, "a@x.com", "Secret123")

	rec := env.postForm("/account/update", url.Values{
		"account_id":        {"999"},
		"account_firstname": {"Ann"},
		"account_lastname":  {"Lee"},
		"account_email":     {"b@x.com"},
	}, session)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sorry, the update failed.")
	// Submitted values are preserved on the re-rendered form.
	assert.Contains(t, rec.Body.String(), `value="b@x.com"`)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "a@x.com", "Secret123")
	session := env.login(t, "a@x.com", "Secret123")
	id := env.accountID(t, "a@x.com")

	rec := env.postForm("/account/update-password", url.Values{
		"account_id":       {strconv.Itoa(id)},
		"account_password": {"NewSecret456"},
	}, session)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	// The password change does not re-issue the session token.
	assert.Nil(t, sessionCookie(rec))

	// The old password stops working everywhere, the new one works.
	old := env.postForm("/account/login", url.Values{
		"account_email":    {"a@x.com"},
		"account_password": {"Secret123"},
	})
	assert.Equal(t, http.StatusBadRequest, old.Code)

	env.login(t, "a@x.com", "NewSecret456")
}

func TestExpiredSession_TreatedAsAnonymous(t *testing.T) {
	env := newTestEnv(t, "test-secret")
	env.register(t, "Ann", "Lee", "a@x.com", "Secret123")

	account, err := services.NewAccountService(env.db).GetAccountByEmail("a@x.com")
	require.NoError(t, err)
	account.PasswordHash = ""
	expired, err := env.tokens.Issue(account, -10)
	require.NoError(t, err)

	rec := env.get("/account/", &http.Cookie{Name: auth.CookieName, Value: expired})

	// Downgraded to anonymous: redirected to login, stale cookie cleared.
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/login", rec.Result().Header.Get("Location"))

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, "test-secret")

	rec := env.get("/no-such-page")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sorry, we appear to have lost that page.")
}
