package joiningController

import (
	"aims/database"
	"aims/middleware"
	"aims/services"
	"aims/utils"
	joiningValidator "aims/validators/joining"

	"github.com/gofiber/fiber/v2"
)

func inputFromRequest(reqData *joiningValidator.JoiningRequest) *services.JoiningInput {
	return &services.JoiningInput{
		LeadID:           reqData.LeadID,
		Student:          reqData.Student,
		Course:           reqData.Course,
		Parents:          reqData.Parents,
		Address:          reqData.Address,
		Reservation:      reqData.Reservation,
		Qualifications:   reqData.Qualifications,
		EducationHistory: reqData.EducationHistory,
		Siblings:         reqData.Siblings,
		Documents:        reqData.Documents,
	}
}

// CreateJoining opens a new draft joining form
func CreateJoining(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedJoining").(*joiningValidator.JoiningRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	joining, err := services.CreateDraft(database.Database.Db, inputFromRequest(reqData))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Joining draft created!", joining)
}

// UpdateJoining patches a draft joining form
func UpdateJoining(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid joining id!", nil)
	}

	reqData, ok := c.Locals("validatedJoining").(*joiningValidator.JoiningRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	joining, err := services.UpdateDraft(database.Database.Db, uint(id), inputFromRequest(reqData))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Joining draft updated!", joining)
}

// SubmitJoining moves a draft to pending approval
func SubmitJoining(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid joining id!", nil)
	}
	userId := c.Locals("userId").(uint)

	joining, err := services.SubmitForApproval(database.Database.Db, uint(id), userId)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Joining submitted for approval!", joining)
}

// ApproveJoining converts a pending joining into a numbered admission
func ApproveJoining(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid joining id!", nil)
	}
	userId := c.Locals("userId").(uint)

	joining, admission, created, err := services.Approve(database.Database.Db, uint(id), userId)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	// A repeat approve settles to the existing admission; don't mail twice.
	if created {
		go utils.SendAdmissionApprovedEmail(
			admission.Student.Email,
			admission.Student.Name,
			admission.AdmissionNumber,
			admission.Course.Course,
		)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Joining approved!", fiber.Map{
		"joining":   joining,
		"admission": admission,
	})
}

// RejectJoining sends a pending joining back to draft
func RejectJoining(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid joining id!", nil)
	}

	reqData, ok := c.Locals("validatedReject").(*struct {
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	joining, err := services.Reject(database.Database.Db, uint(id), reqData.Reason)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Joining returned to draft!", joining)
}

// GetJoining fetches one joining with a fresh payment summary
func GetJoining(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid joining id!", nil)
	}

	joining, err := services.GetJoining(database.Database.Db, uint(id))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Joining fetched!", joining)
}
