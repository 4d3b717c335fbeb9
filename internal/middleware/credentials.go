package middleware

import (
	"strings"

	"BlogEditor/internal/entity"
	jwtPkg "BlogEditor/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	CredentialsKey = "credentials"

	AuthTokenCookie = "authToken"
	DoctorIDCookie  = "doctorId"
	DoctorIDHeader  = "X-Doctor-Id"
)

// NewCredentialsMiddleware collects the caller's stored auth token and doctor
// id. It never rejects a request; each operation decides whether it needs
// them.
func (m *middleware) NewCredentialsMiddleware(ctx *fiber.Ctx) error {
	creds := entity.Credentials{
		Token:    strings.TrimSpace(ctx.Cookies(AuthTokenCookie)),
		DoctorID: strings.TrimSpace(ctx.Cookies(DoctorIDCookie)),
	}
	source := "cookie"

	if creds.Token == "" {
		creds.Token = jwtPkg.BearerToken(ctx.Get(fiber.HeaderAuthorization))
		source = "header"
	}
	if creds.DoctorID == "" {
		creds.DoctorID = strings.TrimSpace(ctx.Get(DoctorIDHeader))
	}

	m.log.WithFields(logrus.Fields{
		"request_id": m.GetRequestID(ctx),
		"path":       ctx.Path(),
		"has_token":  creds.Token != "",
		"has_doctor": creds.DoctorID != "",
		"source":     source,
	}).Debug("Credentials check")

	ctx.Locals(CredentialsKey, creds)
	return ctx.Next()
}

func (m *middleware) GetCredentials(ctx *fiber.Ctx) entity.Credentials {
	creds, _ := ctx.Locals(CredentialsKey).(entity.Credentials)
	return creds
}
