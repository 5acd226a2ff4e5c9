package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Locals keys filled by the JWT middleware.
const (
	LocStaffID  = "staff_id"
	LocRole     = "role"
	LocName     = "staff_name"
	LocRawToken = "raw_token"
)

// AccessClaims is the caller identity carried by every request.
type AccessClaims struct {
	StaffID int64  `json:"staff_id"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs an HS256 token for the given staff identity.
func IssueAccessToken(secret string, staffID int64, role, name string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("jwt secret is empty")
	}
	if staffID <= 0 {
		return "", fmt.Errorf("invalid staff id %d", staffID)
	}
	claims := AccessClaims{
		StaffID: staffID,
		Role:    role,
		Name:    name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(staffID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken verifies signature, algorithm and expiry.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.StaffID <= 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// GetStaffIDFromToken reads the caller id stored by the auth middleware.
func GetStaffIDFromToken(c *fiber.Ctx) (int64, error) {
	switch v := c.Locals(LocStaffID).(type) {
	case int64:
		if v > 0 {
			return v, nil
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - missing staff identity")
}

func GetRoleFromToken(c *fiber.Ctx) string {
	role, _ := c.Locals(LocRole).(string)
	return role
}
