package main

import (
	"errors"
	"net/url"
	"strings"
)

// The browser login flow lands on a callback URL carrying either a one-time
// token (?t=...) or OAuth callback parameters. The user pastes that URL into
// the portal (or passes -login-url); we keep the token and hand back the URL
// with the sensitive parameters scrubbed.

var loginScrubParams = []string{"t", "code", "state", "app_session"}

type loginCapture struct {
	Token       string
	AppSession  string
	OAuthCode   string
	CleanedURL  string
	HadAnyParam bool
}

func parseLoginURL(raw string) (loginCapture, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return loginCapture{}, errors.New("empty login URL")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return loginCapture{}, err
	}
	query := parsed.Query()

	capture := loginCapture{
		Token:      strings.TrimSpace(query.Get("t")),
		AppSession: strings.TrimSpace(query.Get("app_session")),
		OAuthCode:  strings.TrimSpace(query.Get("code")),
	}
	if capture.Token == "" && capture.AppSession != "" {
		// Some backends return the session token under app_session after
		// the OAuth round trip.
		capture.Token = capture.AppSession
	}
	for _, key := range loginScrubParams {
		if query.Has(key) {
			capture.HadAnyParam = true
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()
	capture.CleanedURL = parsed.String()
	return capture, nil
}

// syncLoginToken persists the captured token and returns the scrubbed URL.
func syncLoginToken(store *sessionStore, raw string) (loginCapture, error) {
	capture, err := parseLoginURL(raw)
	if err != nil {
		return capture, err
	}
	if capture.Token == "" {
		if capture.HadAnyParam {
			return capture, nil
		}
		return capture, errors.New("no login token found in URL")
	}
	if err := store.SetToken(capture.Token); err != nil {
		return capture, err
	}
	return capture, nil
}
