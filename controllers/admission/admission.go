package admissionController

import (
	"aims/database"
	"aims/middleware"
	"aims/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GetAdmission fetches one admission with a fresh payment summary
func GetAdmission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid admission id!", nil)
	}

	admission, err := services.GetAdmission(database.Database.Db, uint(id))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Admission fetched!", admission)
}

// ListAdmissions returns a paginated list, newest admission number first
func ListAdmissions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	admissions, total, err := services.ListAdmissions(database.Database.Db, page, limit)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Admissions fetched!", fiber.Map{
		"admissions": admissions,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// WithdrawAdmission flags an active admission as withdrawn
func WithdrawAdmission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid admission id!", nil)
	}

	reqData := new(struct {
		Reason string `json:"reason"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if strings.TrimSpace(reqData.Reason) == "" {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"reason": "Reason is required for withdrawal!",
		})
	}

	admission, err := services.Withdraw(database.Database.Db, uint(id), reqData.Reason)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Admission withdrawn!", admission)
}
