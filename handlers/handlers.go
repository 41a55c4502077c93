package handlers

import (
	"strconv"

	"swasthsetu/auth"
	"swasthsetu/symptom"

	"github.com/gin-gonic/gin"
)

// Tokens is the token manager used by the auth endpoints. Set once by main
// before routes are registered, like the service container.
var Tokens *auth.TokenManager

// SymptomChecker is the AI symptom checker client, nil when no API key is
// configured.
var SymptomChecker *symptom.Client

// Init wires the handler package globals.
func Init(tm *auth.TokenManager, checker *symptom.Client) {
	Tokens = tm
	SymptomChecker = checker
}

// paramUint parses a numeric path parameter.
func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
