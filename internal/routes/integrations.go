package routes

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/growyourneed/platform/internal/secrets"
)

const integrationsCollection = "tenant_integrations"

var providerPattern = regexp.MustCompile(`^[a-z0-9_-]{2,40}$`)

// registerIntegrationRoutes registers tenant integration routes. Credentials
// are stored sealed and never returned; reads only list their field names.
//
// Endpoints:
//
//	GET /api/ext/tenants/{id}/integrations            — configured providers (tenant admin)
//	PUT /api/ext/tenants/{id}/integrations/{provider} — store provider credentials (tenant admin)
func registerIntegrationRoutes(g *router.RouterGroup[*core.RequestEvent], box *secrets.Box) {
	t := g.Group("/tenants/{id}/integrations")
	t.BindFunc(func(e *core.RequestEvent) error {
		if box == nil {
			return e.Error(http.StatusServiceUnavailable, "integrations are not configured", nil)
		}
		if !isTenantAdmin(e, e.Request.PathValue("id")) {
			return e.ForbiddenError("tenant admin access required", nil)
		}
		return e.Next()
	})

	t.GET("", func(e *core.RequestEvent) error {
		records, err := e.App.FindAllRecords(integrationsCollection, dbx.HashExp{"tenantId": e.Request.PathValue("id")})
		if err != nil {
			return e.InternalServerError("failed to load integrations", err)
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			var data integrationData
			if err := rec.UnmarshalJSONField("data", &data); err != nil {
				return e.InternalServerError("corrupt integration "+rec.GetString("name"), err)
			}
			creds, err := openCredentials(box, data.Secret)
			if err != nil {
				return e.InternalServerError("failed to open credentials for "+rec.GetString("name"), err)
			}
			items = append(items, map[string]any{
				"provider":    rec.GetString("name"),
				"settings":    data.Settings,
				"credentials": maskCredentials(creds),
				"updated":     rec.GetDateTime("updated"),
			})
		}
		return e.JSON(http.StatusOK, map[string]any{"items": items})
	})

	t.PUT("/{provider}", func(e *core.RequestEvent) error {
		tenantID := e.Request.PathValue("id")
		provider := e.Request.PathValue("provider")
		if !providerPattern.MatchString(provider) {
			return e.BadRequestError("invalid provider name", nil)
		}

		var body struct {
			Credentials map[string]string `json:"credentials"`
			Settings    map[string]any    `json:"settings"`
		}
		if err := e.BindBody(&body); err != nil {
			return e.BadRequestError("invalid request body", err)
		}
		if len(body.Credentials) == 0 {
			return e.BadRequestError("credentials are required", nil)
		}

		if _, err := e.App.FindRecordById("tenants", tenantID); err != nil {
			return e.NotFoundError("tenant not found", err)
		}

		raw, err := json.Marshal(body.Credentials)
		if err != nil {
			return e.BadRequestError("invalid credentials", err)
		}
		sealed, err := box.Encrypt(string(raw))
		if err != nil {
			return e.InternalServerError("failed to seal credentials", err)
		}

		rec, err := e.App.FindFirstRecordByFilter(integrationsCollection,
			"tenantId = {:tenant} && name = {:provider}",
			dbx.Params{"tenant": tenantID, "provider": provider})
		if err != nil {
			col, colErr := e.App.FindCollectionByNameOrId(integrationsCollection)
			if colErr != nil {
				return e.InternalServerError("integrations collection is missing", colErr)
			}
			rec = core.NewRecord(col)
			rec.Set("tenantId", tenantID)
			rec.Set("name", provider)
		}
		rec.Set("data", integrationData{Settings: body.Settings, Secret: sealed})
		if err := e.App.Save(rec); err != nil {
			return e.BadRequestError("failed to save integration", err)
		}

		return e.JSON(http.StatusOK, map[string]any{
			"provider":    provider,
			"credentials": maskCredentials(body.Credentials),
		})
	})
}

type integrationData struct {
	Settings map[string]any `json:"settings,omitempty"`
	Secret   string         `json:"secret"`
}

func openCredentials(box *secrets.Box, sealed string) (map[string]string, error) {
	if sealed == "" {
		return map[string]string{}, nil
	}
	plain, err := box.Decrypt(sealed)
	if err != nil {
		return nil, err
	}
	creds := map[string]string{}
	if err := json.Unmarshal([]byte(plain), &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// maskCredentials replaces every credential value with "***", keeping the
// keys sorted for stable output.
func maskCredentials(creds map[string]string) map[string]string {
	keys := make([]string, 0, len(creds))
	for k := range creds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = "***"
	}
	return out
}
