package credserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/majorcontext/assumer/internal/log"
	"github.com/majorcontext/assumer/internal/stscreds"
)

// CredentialsPath is the route served by the handler.
const CredentialsPath = "/get-credentials"

// State is the read-only configuration shared by every request.
type State struct {
	Provider    stscreds.Provider
	Token       string
	RoleARN     string
	SessionName string
}

// Handler serves temporary credentials for a single role.
type Handler struct {
	state State
	mux   *http.ServeMux
}

// NewHandler returns a Handler for the given state.
func NewHandler(state State) *Handler {
	h := &Handler{state: state}
	h.mux = http.NewServeMux()
	h.mux.HandleFunc("GET "+CredentialsPath, h.handleGetCredentials)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Expiration marshals as an RFC 3339 timestamp in UTC with a literal "Z".
type Expiration time.Time

// MarshalJSON implements json.Marshaler.
func (e Expiration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(e).UTC().Format(time.RFC3339))
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Expiration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*e = Expiration(t.UTC())
	return nil
}

// CredentialsResponse is the JSON body returned on success. Field names are
// fixed by the SDK container credentials provider.
type CredentialsResponse struct {
	AccessKeyID     string     `json:"AccessKeyId"`
	SecretAccessKey string     `json:"SecretAccessKey"`
	Token           string     `json:"Token"`
	Expiration      Expiration `json:"Expiration"`
	RoleARN         string     `json:"RoleArn"`
}

// authError is an authorization failure mapped to a status code.
type authError struct {
	status int
	msg    string
}

func (e *authError) Error() string { return e.msg }

var (
	errMissingAuth = &authError{http.StatusBadRequest, "missing authorization header"}
	errInvalidAuth = &authError{http.StatusBadRequest, "invalid authorization header"}
	errWrongToken  = &authError{http.StatusForbidden, "invalid authorization token"}
)

// authorize checks the Authorization header. It must run before any STS call.
func (h *Handler) authorize(r *http.Request) error {
	values := r.Header.Values("Authorization")
	if len(values) == 0 {
		return errMissingAuth
	}
	got := values[0]
	if !isPrintable(got) {
		return errInvalidAuth
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.state.Token)) != 1 {
		return errWrongToken
	}
	return nil
}

// isPrintable reports whether s contains only visible ASCII, space and tab.
func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func (h *Handler) handleGetCredentials(w http.ResponseWriter, r *http.Request) {
	// "GET" patterns also match HEAD; a HEAD must not cost an STS call.
	if r.Method == http.MethodHead {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if err := h.authorize(r); err != nil {
		var ae *authError
		errors.As(err, &ae)
		log.Debug("rejected credential request", "status", ae.status, "reason", ae.msg, "remote", r.RemoteAddr)
		http.Error(w, ae.msg, ae.status)
		return
	}

	creds, err := h.state.Provider.AssumeRole(r.Context(), h.state.RoleARN, h.state.SessionName)
	if err != nil {
		// Upstream detail stays in the log; the caller only sees 502.
		log.Error("assume role failed",
			"role_arn", h.state.RoleARN,
			"code", stscreds.ErrorCode(err),
			"error", err)
		http.Error(w, "failed to get credentials", http.StatusBadGateway)
		return
	}

	resp := CredentialsResponse{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		Token:           creds.SessionToken,
		Expiration:      Expiration(creds.Expiration),
		RoleARN:         h.state.RoleARN,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are already sent.
		log.Warn("writing credentials response", "error", err)
	}
}
