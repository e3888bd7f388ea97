package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims binding a client to one form session
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// StartSessionResponse is returned when a form session is created
type StartSessionResponse struct {
	SessionID string       `json:"sessionId"`
	Token     string       `json:"token"`
	Session   *SessionView `json:"session"`
}
