package services

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"printfleet/config"
	"printfleet/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified subject of a bearer token.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
}

// IdentityService verifies bearer tokens issued by the company identity
// provider. Verification is offline against a pinned RSA public key, so the
// service stays up when the provider is unreachable.
type IdentityService struct {
	config    config.Config
	log       logger.Logger
	issuer    string
	audience  string
	publicKey *rsa.PublicKey
}

func NewIdentityService(cfg config.Config) (*IdentityService, error) {
	log := logger.New("IdentityService")

	if cfg.IdentityIssuer == "" || cfg.IdentityPublicKey == "" {
		return nil, log.ErrMsg(
			"identity configuration required but not provided: missing IdentityIssuer or IdentityPublicKey",
		)
	}

	// Handle environment variable formatting of the PEM block
	publicKeyStr := strings.ReplaceAll(cfg.IdentityPublicKey, "\\n", "\n")

	keyBytes, err := base64.StdEncoding.DecodeString(publicKeyStr)
	if err != nil {
		return nil, log.Err("failed to decode identity public key", err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyBytes)
	if err != nil {
		return nil, log.Err("failed to parse identity public key", err)
	}

	service := &IdentityService{
		config:    cfg,
		log:       log,
		issuer:    strings.TrimSuffix(cfg.IdentityIssuer, "/"),
		audience:  cfg.IdentityAudience,
		publicKey: publicKey,
	}

	log.Info("Identity service initialized successfully", "issuer", service.issuer)
	return service, nil
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// ValidateToken verifies the token signature and claims and returns the
// identity it asserts.
func (is *IdentityService) ValidateToken(ctx context.Context, tokenStr string) (*Identity, error) {
	log := is.log.TraceFromContext(ctx).Function("ValidateToken")

	var claims identityClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, log.ErrMsg(
					"unexpected signing method: " + fmt.Sprintf("%v", token.Header["alg"]),
				)
			}
			return is.publicKey, nil
		},
	)
	if err != nil {
		return nil, log.Err("token signature verification failed", err)
	}

	if !token.Valid {
		return nil, log.ErrMsg("token is invalid")
	}

	if claims.Issuer != is.issuer {
		return nil, log.ErrMsg(
			"invalid issuer: expected " + is.issuer + ", got " + claims.Issuer,
		)
	}

	if is.audience != "" && !slices.Contains(claims.Audience, is.audience) {
		return nil, log.ErrMsg(
			"invalid audience: expected " + is.audience + " not found in " + fmt.Sprintf("%v", claims.Audience),
		)
	}

	if claims.Subject == "" {
		return nil, log.ErrMsg("token carries no subject")
	}

	name := claims.Name
	if name == "" && (claims.GivenName != "" || claims.FamilyName != "") {
		name = strings.TrimSpace(claims.GivenName + " " + claims.FamilyName)
	}

	return &Identity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Name:      name,
	}, nil
}
