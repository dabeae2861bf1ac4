package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

type contextKey string

const SignerKey contextKey = "signer"

const maxTransactionBytes = 64 << 10

// SignerClaims is the payload of a signer token. Subject is the signer's
// base58 public key; TxHash is the hex SHA-256 of the request body it signs.
type SignerClaims struct {
	jwt.RegisteredClaims
	TxHash string `json:"txh"`
}

// RequireSigner accepts a request only if it carries a bearer token signed
// (EdDSA) by the key named in its subject, bound to this exact body.
func RequireSigner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			http.Error(w, "Unauthorized: missing signer token", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxTransactionBytes+1))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if len(body) > maxTransactionBytes {
			http.Error(w, "transaction too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var claims SignerClaims
		_, err = jwt.ParseWithClaims(raw, &claims, signerKey,
			jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		sum := sha256.Sum256(body)
		if claims.TxHash != hex.EncodeToString(sum[:]) {
			http.Error(w, "Unauthorized: token does not sign this transaction", http.StatusUnauthorized)
			return
		}

		signer, err := domain.ParseAddress(claims.Subject)
		if err != nil {
			http.Error(w, "Unauthorized: invalid signer", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), SignerKey, signer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func signerKey(token *jwt.Token) (any, error) {
	claims, ok := token.Claims.(*SignerClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	signer, err := domain.ParseAddress(claims.Subject)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(signer.Bytes()), nil
}
