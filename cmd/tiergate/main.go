// Package main is the entry point for tiergate.
//
//	@title						tiergate - Subscription Tier Enforcement
//	@version					1.0
//	@description				Subscription tier enforcement and usage metering for the Crowe Logic AI platform.
//
//	@contact.name				Crowe Logic Support
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				Caller API key
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication (format: "Bearer {api_key}")
//
//	@securityDefinitions.apikey	AdminAuth
//	@in							header
//	@name						Authorization
//	@description				Operator key (format: "Bearer {admin_key}")
package main

func main() {
	Execute()
}
