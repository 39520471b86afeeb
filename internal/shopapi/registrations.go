package shopapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type applicationRequest struct {
	Name             string `json:"name" form:"name" validate:"required,max=200"`
	Email            string `json:"email" form:"email" validate:"required,email"`
	Phone            string `json:"phone" form:"phone" validate:"required,max=32"`
	Region           string `json:"region" form:"region" validate:"required,region"`
	PaymentReference string `json:"paymentReference" form:"paymentReference" validate:"max=128"`
}

// applicationStatus is what an applicant may see of their registration
type applicationStatus struct {
	ID         int64                     `json:"id"`
	Name       string                    `json:"name"`
	Region     string                    `json:"region"`
	Date       string                    `json:"date"`
	Status     domain.RegistrationStatus `json:"status"`
	ReviewDate string                    `json:"reviewDate,omitempty"`
}

func statusOf(r domain.Registration) applicationStatus {
	return applicationStatus{
		ID:         r.ID,
		Name:       r.Name,
		Region:     r.Region,
		Date:       r.Date,
		Status:     r.Status,
		ReviewDate: r.ReviewDate,
	}
}

func registerRegistrationRoutes() {
	webserver.PublicPOST("/registrations", applyAsAgent)
	webserver.PublicGET("/registrations/:id", applicationLookup)
}

func applyAsAgent(c echo.Context) error {
	var req applicationRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse application", err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return failErr(c, err, "Validation failed")
	}
	reg := domain.Registration{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            strings.TrimSpace(req.Phone),
		Region:           req.Region,
		PaymentReference: strings.TrimSpace(req.PaymentReference),
		Date:             time.Now().Format("2006-01-02"),
		Status:           domain.RegistrationPending,
	}
	created, err := GetAppContext(c).Repos().Registrations.Create(c.Request().Context(), reg)
	if err != nil {
		return failErr(c, err, "Failed to submit application")
	}
	zap.L().Info("agent application received",
		zap.String("namespace", "shopapi"),
		zap.Int64("id", created.ID),
		zap.String("region", created.Region))
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "registration": statusOf(created)})
}

func applicationLookup(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid registration ID", nil)
	}
	reg, err := GetAppContext(c).Repos().Registrations.Get(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err, "Failed to load registration")
	}
	return ok(c, "registration", statusOf(reg))
}
