package routes

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/rs/zerolog"

	"github.com/growyourneed/platform/internal/audit"
	"github.com/growyourneed/platform/internal/backend"
	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/rules"
)

// registerSchemaRoutes registers superuser-only schema routes.
//
// Endpoints:
//
//	GET  /api/ext/schema/catalog     — every collection definition the platform owns
//	GET  /api/ext/schema/status      — expected vs present collections
//	POST /api/ext/schema/reconcile   — create missing collections
//	POST /api/ext/schema/rules/check — evaluate a rule against a sample request
func registerSchemaRoutes(g *router.RouterGroup[*core.RequestEvent], logger zerolog.Logger) {
	s := g.Group("/schema")
	s.Bind(apis.RequireSuperuserAuth())

	s.GET("/catalog", func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, map[string]any{
			"definitions": catalog.All(),
			"legacy":      catalog.Legacy,
		})
	})

	s.GET("/status", func(e *core.RequestEvent) error {
		rep, err := backend.NewReconciler(backend.NewLocal(e.App), logger).Diff(e.Request.Context())
		if err != nil {
			return e.InternalServerError("failed to list collections", err)
		}
		return e.JSON(http.StatusOK, rep)
	})

	s.POST("/reconcile", func(e *core.RequestEvent) error {
		rep, res, err := backend.NewReconciler(backend.NewLocal(e.App), logger).Apply(e.Request.Context())
		if err != nil {
			return e.InternalServerError("failed to list collections", err)
		}

		failed := make([]map[string]string, 0, len(res.Failed))
		for _, f := range res.Failed {
			failed = append(failed, map[string]string{"collection": f.Key, "error": f.Err.Error()})
		}

		status := audit.StatusSuccess
		if !res.OK() {
			status = audit.StatusFailed
		}
		audit.Write(e.App, audit.FromRequest(e, audit.Entry{
			Action:       audit.ActionSchemaReconcile,
			ResourceType: "schema",
			Status:       status,
			Detail: map[string]any{
				"created": res.Created,
				"failed":  len(res.Failed),
			},
		}))

		return e.JSON(http.StatusOK, map[string]any{
			"missing":   rep.Missing,
			"created":   nonNil(res.Created),
			"failed":    failed,
			"succeeded": len(res.Created),
		})
	})

	s.POST("/rules/check", handleRuleCheck)
}

// handleRuleCheck compiles a rule and evaluates it against the sample auth
// and record in the body. A null rule is the locked slot.
func handleRuleCheck(e *core.RequestEvent) error {
	var body struct {
		Rule      *string        `json:"rule"`
		Superuser bool           `json:"superuser"`
		Auth      map[string]any `json:"auth"`
		Record    map[string]any `json:"record"`
	}
	if err := e.BindBody(&body); err != nil {
		return e.BadRequestError("invalid request body", err)
	}

	rule, err := rules.Compile(body.Rule)
	if err != nil {
		msg := "invalid rule"
		switch {
		case errors.Is(err, rules.ErrUnsupportedOperator):
			msg = "unsupported operator"
		case errors.Is(err, rules.ErrUnsupportedOperand):
			msg = "unsupported operand"
		}
		return e.BadRequestError(msg, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"rule":    rule.String(),
		"locked":  rule.Locked(),
		"public":  rule.Public(),
		"allowed": rule.Allow(rules.Context{Superuser: body.Superuser, Auth: body.Auth, Record: body.Record}),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
