package vendorapi

import (
	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/config"
	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

// Lenovo не требует вложений и не публикует верхнюю границу их числа.
// 64 — страховочный потолок против неограниченного размера запроса,
// уточнить по документации вендора при подключении реального API.
const lenovoMaxAttachments = 64

// NewLenovoClient создаёт клиент self-dispatch API Lenovo.
func NewLenovoClient(cfg *config.Config, logger *zap.Logger) *HTTPClient {
	return NewHTTPClient(Policy{
		Vendor:           model.VendorLenovo,
		BaseURL:          cfg.LenovoBaseURL,
		LoginPath:        "/auth/login",
		ClaimsPath:       "/claims",
		WarrantyPath:     "/warranty",
		UserFilterParam:  "user",
		ImageFieldPrefix: "image",
		MinAttachments:   0,
		MaxAttachments:   lenovoMaxAttachments,
	}, cfg.RequestTimeout, logger)
}
