package routes

import (
	"net/http"
	"sort"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/growyourneed/platform/internal/settings"
)

// moduleKeys returns the keys of module that may be read or written through
// the settings API. Only groups with code-level defaults are exposed.
func moduleKeys(module string) []string {
	var keys []string
	for g := range settings.Defaults {
		if g.Module == module {
			keys = append(keys, g.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// registerSettingsRoutes mounts the Ext Settings API. Routes require
// superuser authentication.
//
// Endpoints:
//
//	GET   /api/ext/settings/{module} — every group of module
//	PATCH /api/ext/settings/{module} — replace one or more groups of module
func registerSettingsRoutes(g *router.RouterGroup[*core.RequestEvent]) {
	s := g.Group("/settings")
	s.Bind(apis.RequireSuperuserAuth())
	s.GET("/{module}", handleExtSettingsGet)
	s.PATCH("/{module}", handleExtSettingsPatch)
}

func moduleView(app core.App, module string, keys []string) map[string]any {
	result := make(map[string]any, len(keys))
	for _, key := range keys {
		v, _ := settings.Get(app, settings.Group{Module: module, Key: key})
		result[key] = v
	}
	return result
}

// handleExtSettingsGet returns all settings groups for the given module.
func handleExtSettingsGet(e *core.RequestEvent) error {
	module := e.Request.PathValue("module")
	keys := moduleKeys(module)
	if len(keys) == 0 {
		return e.BadRequestError("unknown settings module: "+module, nil)
	}
	return e.JSON(http.StatusOK, moduleView(e.App, module, keys))
}

// handleExtSettingsPatch updates one or more settings groups for the given
// module. Fields missing from an incoming group keep their stored value.
func handleExtSettingsPatch(e *core.RequestEvent) error {
	module := e.Request.PathValue("module")
	keys := moduleKeys(module)
	if len(keys) == 0 {
		return e.BadRequestError("unknown settings module: "+module, nil)
	}

	var body map[string]any
	if err := e.BindBody(&body); err != nil {
		return e.BadRequestError("invalid JSON body", err)
	}

	// Validate all incoming keys before modifying anything.
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	for k, v := range body {
		if !allowed[k] {
			return e.BadRequestError("unknown settings key: "+module+"/"+k, nil)
		}
		if _, ok := v.(map[string]any); !ok {
			return e.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "value for key '" + k + "' must be an object",
			})
		}
	}

	for key, raw := range body {
		existing, _ := settings.Get(e.App, settings.Group{Module: module, Key: key})
		merged := make(map[string]any, len(existing))
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range raw.(map[string]any) {
			merged[k] = v
		}
		if err := settings.SetGroup(e.App, module, key, merged); err != nil {
			return e.InternalServerError("failed to save "+module+"/"+key, err)
		}
	}

	return e.JSON(http.StatusOK, moduleView(e.App, module, keys))
}
