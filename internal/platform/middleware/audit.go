package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/laborders/internal/platform/auth"
)

// PatientParam is the route parameter naming the patient whose records a
// request reads.
const PatientParam = "patientId"

// Audit logs who read which patient's lab records. Requests without a
// patient route parameter are not audited.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			patientID := c.Param(PatientParam)
			if patientID == "" {
				return err
			}
			ctx := c.Request().Context()
			rid, _ := c.Get("request_id").(string)

			logger.Info().
				Str("type", "phi_audit").
				Str("request_id", rid).
				Str("user_id", auth.UserIDFromContext(ctx)).
				Strs("user_roles", auth.RolesFromContext(ctx)).
				Str("patient_id", patientID).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Msg("phi_access")

			return err
		}
	}
}
