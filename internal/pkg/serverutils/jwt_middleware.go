package serverutils

import (
	"fmt"
	"strings"

	"ai-fitcoach-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalUserId = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// NewJwtMiddleware verifies HS256 bearer tokens issued by the identity provider.
// With optional set, requests without an Authorization header pass through as guests;
// a header that is present but invalid is always rejected.
func NewJwtMiddleware(secret string, optional bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" && optional {
			return ctx.Next()
		}
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return dto.NewAuthenticationError("missing bearer token")
		}

		claims, err := parseClaims(authHeader[7:], secret)
		if err != nil {
			return dto.NewAuthenticationError("invalid token")
		}

		ctx.Locals(LocalUserId, claims.UserId.String())
		ctx.Locals(LocalEmail, claims.Email)
		ctx.Locals(LocalRole, claims.Role)
		return ctx.Next()
	}
}

func parseClaims(tokenStr, secret string) (dto.Caller, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return dto.Caller{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return dto.Caller{}, fmt.Errorf("invalid claims")
	}

	rawId, _ := claims["user_id"].(string)
	if rawId == "" {
		rawId, _ = claims["sub"].(string)
	}
	userId, err := uuid.Parse(rawId)
	if err != nil {
		return dto.Caller{}, fmt.Errorf("invalid user_id claim: %w", err)
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return dto.Caller{UserId: userId, Email: email, Role: role}, nil
}

// CallerFromCtx returns the authenticated identity, or a guest when the token was absent.
func CallerFromCtx(ctx *fiber.Ctx) dto.Caller {
	rawId, _ := ctx.Locals(LocalUserId).(string)
	userId, err := uuid.Parse(rawId)
	if err != nil {
		return dto.GuestCaller()
	}
	email, _ := ctx.Locals(LocalEmail).(string)
	role, _ := ctx.Locals(LocalRole).(string)
	return dto.Caller{UserId: userId, Email: email, Role: role}
}

// RequireAdmin must run after the JWT middleware.
func RequireAdmin(ctx *fiber.Ctx) error {
	if !CallerFromCtx(ctx).IsAdmin() {
		return dto.NewAuthorizationError("admin access required")
	}
	return ctx.Next()
}

// SignToken issues a token in the provider's claim format. Used by tests and cmd/chatcli.
func SignToken(secret string, caller dto.Caller, claims jwt.MapClaims) (string, error) {
	mc := jwt.MapClaims{
		"user_id": caller.UserId.String(),
		"email":   caller.Email,
		"role":    caller.Role,
	}
	for k, v := range claims {
		mc[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte(secret))
}
