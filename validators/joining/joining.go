package joiningValidator

import (
	"aims/middleware"
	"aims/models"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// JoiningRequest is the create/update body. Every section is optional: a
// draft can be saved one tab at a time. Format checks (email, mobile,
// pincode) come from the validate tags on the section structs.
type JoiningRequest struct {
	LeadID           *uint                             `json:"leadId"`
	Student          *models.StudentInfo               `json:"studentInfo"`
	Course           *models.CourseInfo                `json:"courseInfo"`
	Parents          *models.ParentInfo                `json:"parents"`
	Address          *models.AddressInfo               `json:"address"`
	Reservation      *models.ReservationInfo           `json:"reservation"`
	Qualifications   *[]models.QualificationInfo       `json:"qualifications"`
	EducationHistory *[]models.EducationRecord         `json:"educationHistory"`
	Siblings         *[]models.SiblingInfo             `json:"siblings"`
	Documents        *map[string]models.DocumentState  `json:"documents"`
}

func collectStructErrors(errors map[string]string, section string, err error) {
	if err == nil {
		return
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			key := section + "." + strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
			errors[key] = fmt.Sprintf("Invalid value (%s)!", fe.Tag())
		}
		return
	}
	errors[section] = "Invalid section payload!"
}

func validateSections(reqData *JoiningRequest) map[string]string {
	errors := make(map[string]string)

	if reqData.Student != nil {
		collectStructErrors(errors, "studentInfo", validate.Struct(reqData.Student))
	}
	if reqData.Parents != nil {
		collectStructErrors(errors, "parents", validate.Struct(reqData.Parents))
	}
	if reqData.Address != nil {
		collectStructErrors(errors, "address", validate.Struct(reqData.Address))
	}
	if reqData.Documents != nil {
		for docType, state := range *reqData.Documents {
			if state != models.DocumentPending && state != models.DocumentReceived {
				errors["documents."+docType] = "Document state must be PENDING or RECEIVED!"
			}
		}
	}
	return errors
}

// CreateJoining validates the create-draft request
func CreateJoining() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(JoiningRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validateSections(reqData)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedJoining", reqData)
		return c.Next()
	}
}

// UpdateJoining validates the update-draft request
func UpdateJoining() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(JoiningRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validateSections(reqData)
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedJoining", reqData)
		return c.Next()
	}
}

// RejectJoining validates the reject request; a reason is mandatory so the
// operator knows what to fix.
func RejectJoining() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if strings.TrimSpace(reqData.Reason) == "" {
			errors["reason"] = "Reason is required for rejection!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReject", reqData)
		return c.Next()
	}
}
