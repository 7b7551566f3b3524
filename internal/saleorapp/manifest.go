// Package saleorapp implements the Saleor-facing app surface: the manifest
// Saleor installs, the storefront checkout flow and the course catalog sync.
package saleorapp

import (
	"CourseBridge/internal/external/saleor"
)

// AppID identifies this app to Saleor.
const AppID = "coursebridge.saleor.app"

// Manifest is the app manifest Saleor fetches at install time. It declares
// the permissions the app token needs and the webhook subscriptions Saleor
// should deliver.
type Manifest struct {
	ID                    string            `json:"id"`
	Version               string            `json:"version"`
	RequiredSaleorVersion string            `json:"requiredSaleorVersion"`
	Name                  string            `json:"name"`
	Author                string            `json:"author"`
	About                 string            `json:"about"`
	Permissions           []string          `json:"permissions"`
	AppURL                string            `json:"appUrl"`
	ConfigurationURL      string            `json:"configurationUrl"`
	TokenTargetURL        string            `json:"tokenTargetUrl"`
	DataPrivacy           string            `json:"dataPrivacy"`
	Webhooks              []WebhookManifest `json:"webhooks"`
}

// WebhookManifest declares one webhook subscription.
type WebhookManifest struct {
	Name        string   `json:"name"`
	AsyncEvents []string `json:"asyncEvents"`
	Query       string   `json:"query"`
	TargetURL   string   `json:"targetUrl"`
	IsActive    bool     `json:"isActive"`
}

// NewManifest builds the manifest with URLs rooted at baseURL, the public
// address Saleor reaches this service on.
func NewManifest(baseURL string) Manifest {
	return Manifest{
		ID:                    AppID,
		Version:               "0.1.0",
		RequiredSaleorVersion: "^3.13",
		Name:                  "coursebridge",
		Author:                "CourseBridge Team",
		About:                 "Bridges the learning platform catalog and enrollment with Saleor.",
		Permissions: []string{
			"MANAGE_USERS",
			"MANAGE_ORDERS",
			"MANAGE_PRODUCTS",
			"MANAGE_CHECKOUTS",
			"MANAGE_PRODUCT_TYPES_AND_ATTRIBUTES",
		},
		AppURL:           baseURL,
		ConfigurationURL: baseURL + "/saleor/webhooks/configuration",
		TokenTargetURL:   baseURL + "/saleor/register",
		DataPrivacy:      "No personal data is stored beyond enrollment records.",
		Webhooks: []WebhookManifest{
			{
				Name:        "Order fully paid",
				AsyncEvents: []string{"ORDER_FULLY_PAID"},
				Query:       saleor.OrderFullyPaidSubscription,
				TargetURL:   baseURL + "/saleor/webhooks/enroll-user",
				IsActive:    true,
			},
		},
	}
}
