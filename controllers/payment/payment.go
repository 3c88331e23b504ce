package paymentController

import (
	"aims/database"
	"aims/middleware"
	"aims/models"
	"aims/services"
	"aims/utils"
	paymentValidator "aims/validators/payment"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// RecordPayment appends one payment to the ledger. For ONLINE mode a gateway
// order is created first; its id travels with the pending transaction until
// reconciliation settles it.
func RecordPayment(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedPayment").(*paymentValidator.RecordPaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	input := &services.RecordTransactionInput{
		JoiningID:     reqData.JoiningID,
		AdmissionID:   reqData.AdmissionID,
		Amount:        reqData.Amount,
		Mode:          models.PaymentMode(reqData.Mode),
		CollectedBy:   userId,
		FailureReason: reqData.FailureReason,
	}
	if reqData.Succeeded != nil {
		input.Succeeded = *reqData.Succeeded
	}

	var order *utils.GatewayOrder
	if input.Mode == models.PaymentModeOnline {
		var err error
		order, err = utils.NewGatewayClient().CreateOrder(reqData.Amount, "INR")
		if err != nil {
			return middleware.ServiceErrorResponse(c, err)
		}
		input.GatewayOrderID = order.OrderID
		input.ReferenceID = order.ReceiptNo
	}

	txn, summary, err := services.RecordTransaction(database.Database.Db, input)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	data := fiber.Map{
		"transaction": txn,
		"summary":     summary,
	}
	if order != nil {
		data["gatewayOrder"] = order
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment recorded!", data)
}

// GetSummary recomputes the payment summary for a joining or an admission
func GetSummary(c *fiber.Ctx) error {
	joiningID := queryUint(c, "joiningId")
	admissionID := queryUint(c, "admissionId")

	summary, err := services.Summarize(database.Database.Db, joiningID, admissionID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment summary fetched!", summary)
}

// ListTransactions returns the ledger rows for one entity
func ListTransactions(c *fiber.Ctx) error {
	joiningID := queryUint(c, "joiningId")
	admissionID := queryUint(c, "admissionId")
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	txns, total, err := services.ListTransactions(database.Database.Db, joiningID, admissionID, page, limit)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transactions fetched!", fiber.Map{
		"transactions": txns,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCollections returns the day's successful collections grouped by mode
func GetCollections(c *fiber.Ctx) error {
	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Date must be YYYY-MM-DD!", nil)
		}
		day = parsed
	}
	dayStart := now.New(day).BeginningOfDay()
	dayEnd := now.New(day).EndOfDay()

	type modeTotal struct {
		Mode  models.PaymentMode `json:"mode"`
		Total float64            `json:"total"`
		Count int64              `json:"count"`
	}
	var totals []modeTotal
	if err := database.Database.Db.Model(&models.PaymentTransaction{}).
		Select("mode, SUM(amount) as total, COUNT(*) as count").
		Where("status = ? AND processed_at BETWEEN ? AND ?",
			models.PaymentStatusSuccess, dayStart, dayEnd).
		Group("mode").
		Scan(&totals).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch collections!", nil)
	}

	var grandTotal float64
	for _, t := range totals {
		grandTotal += t.Total
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Collections fetched!", fiber.Map{
		"date":       dayStart.Format("2006-01-02"),
		"byMode":     totals,
		"grandTotal": grandTotal,
	})
}

// ReconcileNow triggers an on-demand reconciliation pass
func ReconcileNow(c *fiber.Ctx) error {
	result := utils.RunReconciliationPass()
	if result == nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Reconciliation pass failed!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reconciliation pass complete!", fiber.Map{
		"checked": result.Checked,
		"updated": result.Updated,
		"failed":  result.Failed,
	})
}

func queryUint(c *fiber.Ctx, key string) *uint {
	v := c.QueryInt(key, 0)
	if v <= 0 {
		return nil
	}
	u := uint(v)
	return &u
}
