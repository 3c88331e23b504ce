package paymentValidator

import (
	"aims/middleware"
	"aims/models"

	"github.com/gofiber/fiber/v2"
)

// RecordPaymentRequest is the record-transaction body.
type RecordPaymentRequest struct {
	JoiningID     *uint   `json:"joiningId"`
	AdmissionID   *uint   `json:"admissionId"`
	Amount        float64 `json:"amount"`
	Mode          string  `json:"mode"`
	Succeeded     *bool   `json:"succeeded"`
	FailureReason string  `json:"failureReason"`
}

// RecordPayment validates the record-transaction request. CASH and UPI_QR
// must say whether collection succeeded; ONLINE must not, the gateway decides.
func RecordPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RecordPaymentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if (reqData.JoiningID == nil) == (reqData.AdmissionID == nil) {
			errors["reference"] = "Exactly one of joiningId or admissionId is required!"
		}
		if reqData.Amount <= 0 {
			errors["amount"] = "Amount must be greater than 0!"
		}

		switch models.PaymentMode(reqData.Mode) {
		case models.PaymentModeCash, models.PaymentModeUpiQr:
			if reqData.Succeeded == nil {
				errors["succeeded"] = "Succeeded flag is required for cash/UPI collections!"
			}
		case models.PaymentModeOnline:
		default:
			errors["mode"] = "Mode must be CASH, ONLINE or UPI_QR!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}
