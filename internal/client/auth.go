package client

import (
	"encoding/base64"
	"net/http"
)

// Authenticator attaches credentials to an outbound request. The client never
// inspects which scheme is in use; each strategy contributes one header.
type Authenticator interface {
	Apply(h http.Header)
}

// HeaderAuth sets a single fixed header.
type HeaderAuth struct {
	Name  string
	Value string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(h http.Header) {
	if a.Name == "" {
		return
	}
	h.Set(a.Name, a.Value)
}

// APIKey sends the key in a custom header (Amelia uses "Amelia").
func APIKey(header, key string) HeaderAuth {
	return HeaderAuth{Name: header, Value: key}
}

// Bearer sends an "Authorization: Bearer <token>" header.
func Bearer(token string) HeaderAuth {
	return HeaderAuth{Name: "Authorization", Value: "Bearer " + token}
}

// Basic sends HTTP Basic credentials.
func Basic(username, password string) HeaderAuth {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return HeaderAuth{Name: "Authorization", Value: "Basic " + creds}
}

// NoAuth sends no credentials.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(http.Header) {}
