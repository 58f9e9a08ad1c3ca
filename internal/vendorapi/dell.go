package vendorapi

import (
	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/config"
	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

// Границы числа вложений Dell: от одного до восьми включительно.
const (
	dellMinAttachments = 1
	dellMaxAttachments = 8
)

// NewDellClient создаёт клиент Dell TechDirect. Вход выполняется по
// OAuth-подобной схеме: помимо логина и пароля в тело запроса входят
// client_id, client_secret и grant_type из конфигурации.
func NewDellClient(cfg *config.Config, logger *zap.Logger) *HTTPClient {
	return NewHTTPClient(Policy{
		Vendor:           model.VendorDell,
		BaseURL:          cfg.DellBaseURL,
		LoginPath:        "/auth/login",
		ClaimsPath:       "/claims",
		WarrantyPath:     "/warranty",
		UserFilterParam:  "user",
		ImageFieldPrefix: "image",
		MinAttachments:   dellMinAttachments,
		MaxAttachments:   dellMaxAttachments,
		ClientID:         cfg.DellClientID,
		ClientSecret:     cfg.DellClientSecret,
		GrantType:        "password",
	}, cfg.RequestTimeout, logger)
}
