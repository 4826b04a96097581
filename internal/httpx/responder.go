package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced to the dashboard page. The page keys its inline
// alerts and its redirect-to-login behavior off these.
const (
	CodeAuthExpired       = "auth_expired"
	CodeNetworkFailure    = "network_failure"
	CodeValidationFailure = "validation_failure"
	CodeBackendRejection  = "backend_rejection"
)

type errorBody struct {
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Redirect string `json:"redirect,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, detail string) {
	WriteJSON(w, status, errorBody{Code: code, Detail: detail})
}

// WriteAuthExpired tells the page to drop its state and return to the login
// entry point.
func WriteAuthExpired(w http.ResponseWriter, loginPath string) {
	WriteJSON(w, http.StatusUnauthorized, errorBody{
		Code:     CodeAuthExpired,
		Detail:   "session expired or not authenticated",
		Redirect: loginPath,
	})
}
