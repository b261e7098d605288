package routes

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/growyourneed/platform/internal/audit"
	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/payments"
)

// registerPaymentRoutes registers payment routes for tenant admins and owners.
//
// Endpoints:
//
//	GET  /api/ext/payments/status — whether payments are enabled
//	POST /api/ext/payments/intent — create a Stripe payment intent, optionally for an invoice
func registerPaymentRoutes(g *router.RouterGroup[*core.RequestEvent], gw payments.Gateway) {
	if gw == nil {
		gw = payments.New(payments.Config{})
	}
	p := g.Group("/payments")

	p.GET("/status", func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, map[string]bool{"enabled": gw.Enabled()})
	})

	p.POST("/intent", func(e *core.RequestEvent) error {
		if !gw.Enabled() {
			return e.Error(http.StatusServiceUnavailable, "payments are disabled", nil)
		}

		var body struct {
			InvoiceID   string `json:"invoiceId"`
			TenantID    string `json:"tenantId"`
			AmountCents int64  `json:"amount"`
			Currency    string `json:"currency"`
			Description string `json:"description"`
		}
		if err := e.BindBody(&body); err != nil {
			return e.BadRequestError("invalid request body", err)
		}

		var invoice *core.Record
		if body.InvoiceID != "" {
			rec, err := e.App.FindRecordById(catalog.Invoices.Name, body.InvoiceID)
			if err != nil {
				return e.NotFoundError("invoice not found", err)
			}
			invoice = rec
			body.TenantID = rec.GetString("tenantId")
			body.AmountCents = int64(rec.GetInt("amount_cents"))
			body.Currency = rec.GetString("currency")
			body.Description = "Invoice " + rec.GetString("number")
		}
		if body.TenantID == "" && e.Auth != nil {
			body.TenantID = e.Auth.GetString("tenantId")
		}
		if !isTenantAdmin(e, body.TenantID) {
			return e.ForbiddenError("tenant admin access required", nil)
		}

		params := payments.IntentParams{
			AmountCents: body.AmountCents,
			Currency:    body.Currency,
			Description: body.Description,
			Metadata:    map[string]string{"tenantId": body.TenantID},
		}
		if e.Auth != nil {
			params.Email = e.Auth.Email()
			params.Metadata["userId"] = e.Auth.Id
		}
		if invoice != nil {
			params.Metadata["invoiceId"] = invoice.Id
		}

		entry := audit.FromRequest(e, audit.Entry{
			TenantID:     body.TenantID,
			Action:       audit.ActionPaymentIntent,
			ResourceType: "payment_intent",
			Detail:       map[string]any{"amount": body.AmountCents, "currency": body.Currency},
		})

		intent, err := gw.CreatePaymentIntent(e.Request.Context(), params)
		if err != nil {
			entry.Status = audit.StatusFailed
			entry.Detail["errorMessage"] = err.Error()
			audit.Write(e.App, entry)
			if errors.Is(err, payments.ErrInvalidAmount) {
				return e.BadRequestError(err.Error(), nil)
			}
			return e.Error(http.StatusBadGateway, "payment provider error", err)
		}

		if invoice != nil {
			invoice.Set("payment_intent", intent.ID)
			if err := e.App.Save(invoice); err != nil {
				return e.InternalServerError("failed to link payment intent", err)
			}
		}

		entry.Status = audit.StatusSuccess
		entry.ResourceID = intent.ID
		audit.Write(e.App, entry)
		return e.JSON(http.StatusOK, intent)
	})
}
