package adminapi

import (
	"net/http"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type reviewPayload struct {
	ReviewedBy string `json:"reviewedBy"`
	Notes      string `json:"notes" validate:"max=2000"`
}

var registrationResource = resource[domain.Registration, int64]{
	collection: domain.CollectionRegistrations,
	repo:       func(s *repository.Set) repository.Repository[domain.Registration, int64] { return s.Registrations },
	parseID:    parseInt64ID,
	setID:      func(r *domain.Registration, id int64) { r.ID = id },
}

func registerRegistrationRoutes() {
	registrationResource.register()
	webserver.ApiPOST("/registrations/:id/approve", approveRegistration)
	webserver.ApiPOST("/registrations/:id/reject", rejectRegistration)
}

func approveRegistration(c echo.Context) error {
	return reviewRegistration(c, true)
}

func rejectRegistration(c echo.Context) error {
	return reviewRegistration(c, false)
}

func reviewRegistration(c echo.Context, approve bool) error {
	id, valid := registrationResource.id(c)
	if !valid {
		return nil
	}
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return failErr(c, err, "Validation failed")
	}
	// the token subject wins over whatever the client claims
	if user := webserver.CurrentUser(c); user != "" {
		payload.ReviewedBy = user
	}

	reviewer := GetRepos(c).Reviewer
	ctx := c.Request().Context()
	var (
		reg domain.Registration
		err error
	)
	if approve {
		reg, err = reviewer.Approve(ctx, id, payload.ReviewedBy, payload.Notes)
	} else {
		reg, err = reviewer.Reject(ctx, id, payload.ReviewedBy, payload.Notes)
	}
	if err != nil {
		return failErr(c, err, "Failed to review registration")
	}

	notifyDecision(c, reg)
	return ok(c, "registration", reg)
}

// notifyDecision mails the applicant when enabled; failures never fail the review
func notifyDecision(c echo.Context, reg domain.Registration) {
	appCtx := GetAppContext(c)
	mailer := appCtx.Mailer()
	if mailer == nil {
		return
	}
	ns, err := appCtx.SettingsStore().NotificationSettings(c.Request().Context())
	if err != nil {
		zap.L().Warn("read notification settings", zap.String("namespace", "adminapi"), zap.Error(err))
		return
	}
	if !ns.EmailOnRegistration {
		return
	}
	if err := mailer.SendRegistrationDecision(reg); err != nil {
		zap.L().Error("registration decision mail failed",
			zap.String("namespace", "adminapi"),
			zap.Int64("registration", reg.ID),
			zap.Error(err))
	}
}
