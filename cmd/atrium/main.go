// Atrium is a condition-driven template resolution service.
//
// It stores page templates with targeting conditions and, per request,
// selects the single template whose conditions match the request context:
//   - Structural targeting (front page, archives, single resources, 404, search)
//   - Contextual targeting (device, browser, locale, auth state, query params)
//   - Storefront targeting (shop, product categories, cart, checkout)
//   - Header and footer slot templates alongside full-page replacements
//
// Usage:
//
//	# Start server with default configuration
//	atrium run
//
//	# Start with custom configuration file
//	atrium run --config /path/to/config.yaml
//
//	# Validate template files
//	atrium lint --file templates.yaml
//
//	# Resolve a synthetic request context against a template file
//	atrium resolve --file templates.yaml --path /pricing --device mobile
//
//	# Show version information
//	atrium version
package main

func main() {
	Execute()
}
