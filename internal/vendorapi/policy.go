package vendorapi

import "github.com/mmeshcher/selfdispatch-system/internal/model"

// Policy описывает протокольные особенности конкретного вендора:
// адреса эндпоинтов, правила именования полей вложений и допустимое
// число вложений в заявке. Контракты вендоров похожи сегодня, но
// ожидаемо разойдутся после подключения реальных API, поэтому всё
// вендор-специфичное собрано здесь, а не в коде клиента.
type Policy struct {
	Vendor model.VendorType

	BaseURL      string
	LoginPath    string
	ClaimsPath   string
	WarrantyPath string

	// UserFilterParam — имя query-параметра серверной фильтрации заявок
	// по пользователю. Значение передаётся вендору как есть.
	UserFilterParam string

	// ImageFieldPrefix — префикс имён бинарных полей multipart-запроса,
	// нумерация всегда с единицы: image1, image2, ...
	ImageFieldPrefix string

	// MinAttachments и MaxAttachments — границы числа вложений включительно.
	// MaxAttachments == 0 означает отсутствие верхней границы.
	MinAttachments int
	MaxAttachments int

	// Учётные данные приложения для OAuth-подобной схемы входа.
	// Пустые значения не попадают в тело запроса.
	ClientID     string
	ClientSecret string
	GrantType    string
}
