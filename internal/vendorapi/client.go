// Package vendorapi реализует клиентов self-dispatch API вендоров оборудования.
package vendorapi

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/config"
	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

// Client описывает контракт клиента self-dispatch API одного вендора.
// Все возвращаемые Claim и WarrantyInfo помечены вендором клиента.
type Client interface {
	// Authenticate выполняет вход и сохраняет токен для последующих вызовов.
	Authenticate(ctx context.Context, username, password string) error
	// ListClaims возвращает заявки, видимые авторизованному технику.
	// Непустой filterUser передаётся серверу как есть отдельным параметром.
	ListClaims(ctx context.Context, filterUser string) ([]model.Claim, error)
	// CheckWarranty возвращает состояние гарантии по сервисному тегу.
	// Отсутствие записи у вендора кодируется как IsValid=false, не как ошибка.
	CheckWarranty(ctx context.Context, serviceTag string) (*model.WarrantyInfo, error)
	// CreateClaim регистрирует новую заявку. Локальная валидация выполняется
	// до любого сетевого вызова.
	CreateClaim(ctx context.Context, req *model.CreateClaimRequest) (*model.Claim, error)
	// VendorType идентифицирует вендора клиента.
	VendorType() model.VendorType
}

// New создаёт клиент указанного вендора с конфигурацией из cfg.
func New(vendor model.VendorType, cfg *config.Config, logger *zap.Logger) (Client, error) {
	switch vendor {
	case model.VendorDell:
		return NewDellClient(cfg, logger), nil
	case model.VendorLenovo:
		return NewLenovoClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported vendor %q", vendor)
	}
}

// ParseVendor преобразует пользовательский ввод в VendorType.
func ParseVendor(s string) (model.VendorType, error) {
	switch s {
	case "dell", "Dell", "DELL":
		return model.VendorDell, nil
	case "lenovo", "Lenovo", "LENOVO":
		return model.VendorLenovo, nil
	default:
		return "", fmt.Errorf("unsupported vendor %q", s)
	}
}

const defaultRequestTimeout = 30 * time.Second
