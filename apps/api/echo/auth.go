package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/services/identity"
)

// appJWTConfig is the default JWT auth middleware config.
var appJWTConfig = middleware.JWTConfig{
	SigningKey:    []byte(core.Conf.SecretKey),
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "accountToken",
	Claims:        new(Claims),
}

// Claims represents the authorization claims transmitted via a JWT.
// Subject is the account UID; OrgID scopes every tenant-bound operation
// and is never read from the request payload.
type Claims struct {
	jwt.StandardClaims
	IsSuperAdmin bool   `json:"is_superadmin,omitempty"` // -> PLATFORM CONSOLE
	IsAdmin      bool   `json:"is_admin,omitempty"`      // -> ADMIN PORTAL
	IsTeacher    bool   `json:"is_teacher,omitempty"`    // -> TEACHER PORTAL
	IsStudent    bool   `json:"is_student,omitempty"`    // -> STUDENT PORTAL
	OrgID        string `json:"org_id,omitempty"`
}

// GetAccountClaims converts identity-service claims into JWT claims for
// the given account UID.
func GetAccountClaims(uid string, c identitysvc.Claims) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   uid,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsSuperAdmin: c.SuperAdmin,
		IsAdmin:      c.Admin,
		IsTeacher:    c.Teacher,
		IsStudent:    c.Student,
		OrgID:        c.OrgID,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
