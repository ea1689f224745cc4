// Package session turns authenticated request state into explicit values
// that handlers pass down to services.
package session

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUnauthenticated = errors.New("no authenticated user in context")

// Viewer is the authenticated member making a request.
type Viewer struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
	Role        string
}

func (v Viewer) ID() string { return v.UserID.String() }

// ViewerFrom extracts the viewer from JWT claims placed in context by the
// JWT middleware.
func ViewerFrom(c *fiber.Ctx) (Viewer, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Viewer{}, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Viewer{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Viewer{}, errors.New("missing sub claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return Viewer{}, err
	}

	v := Viewer{UserID: id}
	v.Email, _ = claims["email"].(string)
	v.DisplayName, _ = claims["name"].(string)
	v.Role, _ = claims["role"].(string)
	return v, nil
}

// UserID is a shortcut for handlers that only need the id.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	v, err := ViewerFrom(c)
	if err != nil {
		return uuid.Nil, err
	}
	return v.UserID, nil
}

// OwnedBy scopes a query to rows belonging to userID.
func OwnedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Location resolves the viewer's time zone from the X-Timezone header or tz
// query parameter. Unknown zones fall back.
func Location(c *fiber.Ctx, fallback *time.Location) *time.Location {
	name := c.Get("X-Timezone")
	if name == "" {
		name = c.Query("tz")
	}
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}
