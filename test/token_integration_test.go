//go:build integration
// +build integration

package test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/MrEthical07/goPolicy/token"
	gjwt "github.com/golang-jwt/jwt/v5"
)

func TestTokenIntegrationHardeningChecks(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	manager, err := token.NewManager(token.Config{
		TTL:           time.Minute,
		SigningMethod: token.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "gopolicy",
		Audience:      "api",
		Leeway:        30 * time.Second,
		KeyID:         "k1",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, _, err := manager.Issue("alice", basePolicy)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := manager.Parse(signed)
	if err != nil {
		t.Fatalf("Parse valid token failed: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if claims.PolicyString != basePolicy {
		t.Fatalf("policy string did not round-trip: %q", claims.PolicyString)
	}

	badClaims := token.Claims{
		PolicyString: basePolicy,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "gopolicy",
			Audience:  gjwt.ClaimStrings{"api"},
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  gjwt.NewNumericDate(time.Now()),
		},
	}

	badToken := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, badClaims)
	badToken.Header["kid"] = "unknown"
	signedBad, err := badToken.SignedString(priv)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := manager.Parse(signedBad); err == nil {
		t.Fatal("expected unknown kid token to fail")
	}
}
