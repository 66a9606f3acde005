package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Pipeline errors (E100-E119)

	"E100": {
		Category: CategoryRouting,
		Message:  "Route matching failed",
		Detail:   "The route tree raised an error while matching the request URL.",
	},
	"E101": {
		Category: CategoryRender,
		Message:  "Root component render failed",
		Detail:   "The root component could not be rendered for the matched routes.",
	},
	"E102": {
		Category: CategoryRender,
		Message:  "Route data fetch failed",
		Detail:   "A data dependency declared by a matched route returned an error.",
	},
	"E103": {
		Category:   CategoryRender,
		Message:    "Unknown provider",
		Detail:     "The configuration lists a provider that was never registered.",
		Suggestion: "Register the provider with root.ProviderRegistry.Register or remove it from \"providers\"",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Unknown module name",
		Detail:     "The configuration names a root component, routes, middleware or reducers entry that is not registered.",
		Suggestion: "Check the names in prerender.json against the registry passed to prerender.New",
	},
	"E105": {
		Category: CategoryStore,
		Message:  "Invalid store middleware",
		Detail:   "A middleware in the store factory list is nil.",
	},
	"E106": {
		Category: CategoryRender,
		Message:  "Panic during request",
		Detail:   "A panic was recovered while handling the request.",
	},

	// Configuration errors (E120-E129)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create prerender.json in the project root or pass --config",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid environment flags",
		Detail:   "The PRERENDER_* environment variables could not be parsed.",
	},

	// Asset errors (E130-E139)

	"E130": {
		Category:   CategoryAssets,
		Message:    "Asset stats unreadable",
		Detail:     "The build output metadata could not be read or decoded.",
		Suggestion: "Run the client build so that the stats file exists",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
