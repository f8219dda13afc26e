package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/L33hy/cse340/internal/auth"
	"github.com/L33hy/cse340/internal/services"
	"github.com/L33hy/cse340/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	msgCheckCredentials = "Please check your credentials and try again."
	msgConfigError      = "Server configuration error. Please contact administrator."
)

// AccountHandler handles the account flows: register, login, logout, profile
// and password updates.
type AccountHandler struct {
	accounts services.AccountServiceProvider
	activity services.ActivityServiceProvider
	tokens   *auth.TokenService
	cookies  *auth.CookieManager
	renderer view.Renderer
	nav      view.NavProvider
	flash    *view.Flash
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	accounts services.AccountServiceProvider,
	activity services.ActivityServiceProvider,
	tokens *auth.TokenService,
	cookies *auth.CookieManager,
	renderer view.Renderer,
	nav view.NavProvider,
	flash *view.Flash,
) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		activity: activity,
		tokens:   tokens,
		cookies:  cookies,
		renderer: renderer,
		nav:      nav,
		flash:    flash,
	}
}

// page assembles the base view data for a render: title, nav and any pending
// flash messages.
func (h *AccountHandler) page(w http.ResponseWriter, r *http.Request, title string) view.Data {
	return view.Data{
		"Title":    title,
		"Nav":      view.Nav(h.nav),
		"Errors":   nil,
		"Messages": h.flash.Pop(w, r),
	}
}

// withNotice appends a notice to a page that renders in this same response.
func withNotice(data view.Data, text string) view.Data {
	msgs, _ := data["Messages"].([]view.Message)
	data["Messages"] = append(msgs, view.Notice(text))
	return data
}

// BuildLogin delivers the login view.
func (h *AccountHandler) BuildLogin(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r, "Login")
	data["AccountEmail"] = ""
	h.renderer.Render(w, http.StatusOK, "login", data)
}

// BuildRegister delivers the registration view.
func (h *AccountHandler) BuildRegister(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r, "Register")
	data["AccountFirstname"] = ""
	data["AccountLastname"] = ""
	data["AccountEmail"] = ""
	h.renderer.Render(w, http.StatusOK, "register", data)
}

// Register processes a registration submission.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	firstName := r.PostFormValue("account_firstname")
	lastName := r.PostFormValue("account_lastname")
	email := r.PostFormValue("account_email")
	password := r.PostFormValue("account_password")

	data := h.page(w, r, "Register")
	data["AccountFirstname"] = firstName
	data["AccountLastname"] = lastName
	data["AccountEmail"] = email

	// Hash before anything touches storage. A hashing failure aborts the
	// flow with no write.
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password during registration")
		h.renderer.Render(w, http.StatusInternalServerError, "register",
			withNotice(data, "Sorry, there was an error processing the registration."))
		return
	}

	rows, err := h.accounts.Register(firstName, lastName, email, passwordHash)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to register account")
	}
	if rows == 0 {
		h.renderer.Render(w, http.StatusNotImplemented, "register",
			withNotice(data, "Sorry, the registration failed."))
		return
	}

	h.recordActivity("account.register", "info",
		fmt.Sprintf("Account registered for %s", email), nil)

	loginData := h.page(w, r, "Login")
	loginData["AccountEmail"] = email
	h.renderer.Render(w, http.StatusCreated, "login", withNotice(loginData,
		fmt.Sprintf("Congratulations, you're registered %s. Please log in.", firstName)))
}

// Login processes a login submission.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("account_email")
	password := r.PostFormValue("account_password")

	data := h.page(w, r, "Login")
	data["AccountEmail"] = email

	if !h.tokens.Ready() {
		log.Error().Msg("ACCESS_TOKEN_SECRET is not set, cannot issue session tokens")
		h.renderer.Render(w, http.StatusInternalServerError, "login",
			withNotice(data, msgConfigError))
		return
	}

	account, err := h.accounts.GetAccountByEmail(email)
	if err != nil {
		if !errors.Is(err, services.ErrAccountNotFound) {
			log.Error().Err(err).Msg("Failed to look up account during login")
			h.renderer.Render(w, http.StatusInternalServerError, "login",
				withNotice(data, "Sorry, there was an error processing the login. Please try again."))
			return
		}
		// Unknown email: same message and status as a wrong password, so the
		// response never reveals which check failed.
		h.recordActivity("account.login.fail", "warn",
			fmt.Sprintf("Failed login attempt for %s", email), nil)
		h.renderer.Render(w, http.StatusBadRequest, "login",
			withNotice(data, msgCheckCredentials))
		return
	}

	if !auth.CheckPassword(password, account.PasswordHash) {
		h.recordActivity("account.login.fail", "warn",
			fmt.Sprintf("Failed login attempt for %s", email), &account.ID)
		h.renderer.Render(w, http.StatusBadRequest, "login",
			withNotice(data, msgCheckCredentials))
		return
	}

	account.PasswordHash = ""
	token, err := h.tokens.Issue(account, auth.TokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue session token")
		h.renderer.Render(w, http.StatusInternalServerError, "login",
			withNotice(data, "Sorry, there was an error processing the login. Please try again."))
		return
	}

	h.cookies.Set(w, token)
	h.recordActivity("account.login", "info",
		fmt.Sprintf("%s logged in", account.Email), &account.ID)
	h.flash.Add(w, r, "notice", "Welcome "+account.FirstName)
	http.Redirect(w, r, "/account/", http.StatusSeeOther)
}

// Logout clears the session and redirects home. It always succeeds.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	h.cookies.Clear(w)
	if identity.LoggedIn {
		h.recordActivity("account.logout", "info",
			fmt.Sprintf("%s logged out", identity.Account.Email), &identity.Account.AccountID)
	}
	h.flash.Add(w, r, "notice", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Management delivers the account management view.
func (h *AccountHandler) Management(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	data := h.page(w, r, "Account Management")
	data["Account"] = identity.Account
	if recent, err := h.activity.RecentForAccount(identity.Account.AccountID, 10); err == nil {
		data["Activity"] = recent
	} else {
		log.Error().Err(err).Msg("Failed to load account activity")
	}
	h.renderer.Render(w, http.StatusOK, "management", data)
}

// BuildUpdate delivers the account update view.
func (h *AccountHandler) BuildUpdate(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(chi.URLParam(r, "accountID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	identity := auth.IdentityFromContext(r.Context())

	data := h.page(w, r, "Update Account")
	data["AccountID"] = accountID
	data["AccountFirstname"] = identity.Account.FirstName
	data["AccountLastname"] = identity.Account.LastName
	data["AccountEmail"] = identity.Account.Email
	h.renderer.Render(w, http.StatusOK, "update", data)
}

// UpdateAccount processes a profile update. On success the session token is
// re-issued so the identity reflects the new name and email immediately,
// without a fresh login.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	accountID, _ := strconv.Atoi(r.PostFormValue("account_id"))
	firstName := r.PostFormValue("account_firstname")
	lastName := r.PostFormValue("account_lastname")
	email := r.PostFormValue("account_email")

	data := h.page(w, r, "Update Account")
	data["AccountID"] = accountID
	data["AccountFirstname"] = firstName
	data["AccountLastname"] = lastName
	data["AccountEmail"] = email

	ok, err := h.accounts.UpdateAccount(accountID, firstName, lastName, email)
	if err != nil {
		log.Error().Err(err).Int("account_id", accountID).Msg("Failed to update account")
	}
	if !ok {
		h.renderer.Render(w, http.StatusNotImplemented, "update",
			withNotice(data, "Sorry, the update failed."))
		return
	}

	account, err := h.accounts.GetAccountByID(accountID)
	if err != nil {
		log.Error().Err(err).Int("account_id", accountID).Msg("Failed to reload account after update")
		h.renderer.Render(w, http.StatusInternalServerError, "update",
			withNotice(data, "Sorry, there was an error processing the update."))
		return
	}

	if !h.tokens.Ready() {
		log.Error().Msg("ACCESS_TOKEN_SECRET is not set, cannot refresh session token")
		h.renderer.Render(w, http.StatusInternalServerError, "update",
			withNotice(data, msgConfigError))
		return
	}

	account.PasswordHash = ""
	token, err := h.tokens.Issue(account, auth.TokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to re-issue session token after update")
		h.renderer.Render(w, http.StatusInternalServerError, "update",
			withNotice(data, "Sorry, there was an error processing the update."))
		return
	}
	h.cookies.Set(w, token)

	h.recordActivity("account.update", "info",
		fmt.Sprintf("Account information updated for %s", account.Email), &account.ID)
	h.flash.Add(w, r, "notice", "The account information has been successfully updated.")
	http.Redirect(w, r, "/account/", http.StatusSeeOther)
}

// UpdatePassword processes a password change. The session token is not
// re-issued (the password is not part of the claims), but only the new
// password verifies from here on.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	accountID, _ := strconv.Atoi(r.PostFormValue("account_id"))
	password := r.PostFormValue("account_password")

	identity := auth.IdentityFromContext(r.Context())
	data := h.page(w, r, "Update Account")
	data["AccountID"] = accountID
	data["AccountFirstname"] = identity.Account.FirstName
	data["AccountLastname"] = identity.Account.LastName
	data["AccountEmail"] = identity.Account.Email

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password during password update")
		h.renderer.Render(w, http.StatusInternalServerError, "update",
			withNotice(data, "Sorry, there was an error processing the password update."))
		return
	}

	ok, err := h.accounts.UpdatePassword(accountID, passwordHash)
	if err != nil {
		log.Error().Err(err).Int("account_id", accountID).Msg("Failed to update password")
	}
	if !ok {
		h.renderer.Render(w, http.StatusNotImplemented, "update",
			withNotice(data, "Sorry, the password update failed."))
		return
	}

	h.recordActivity("account.password.update", "info",
		"Account password updated", &accountID)
	h.flash.Add(w, r, "notice", "The password has been successfully updated.")
	http.Redirect(w, r, "/account/", http.StatusSeeOther)
}

// recordActivity logs to the audit trail. Failures there never interfere
// with the flow that triggered them.
func (h *AccountHandler) recordActivity(activityType, level, message string, accountID *int) {
	if err := h.activity.Record(activityType, level, message, accountID); err != nil {
		log.Error().Err(err).Str("type", activityType).Msg("Failed to record account activity")
	}
}
