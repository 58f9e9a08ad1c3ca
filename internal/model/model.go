// Package model содержит доменные сущности портала самодиспетчеризации.
package model

import "time"

// VendorType определяет вендора оборудования, с которым работает клиент.
type VendorType string

const (
	VendorDell   VendorType = "DELL"
	VendorLenovo VendorType = "LENOVO"
)

// UserCredentials описывает данные авторизованного техника на время одной сессии.
// Пароль после успешной аутентификации не сохраняется.
type UserCredentials struct {
	Vendor   VendorType
	Username string
	Token    string
}

// Claim описывает сервисную заявку, зарегистрированную в системе вендора.
type Claim struct {
	ClaimID      string
	ServiceTag   string
	Description  string
	CreatedDate  time.Time
	Status       string
	CreatedBy    string
	Vendor       VendorType
	ImagePaths   []string
	PartNumber   string
	SerialNumber string
}

// WarrantyInfo содержит результат проверки гарантии по сервисному тегу.
type WarrantyInfo struct {
	ServiceTag   string
	ProductName  string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       string
	IsValid      bool
	ServiceLevel string
	Vendor       VendorType
}

// Attachment описывает вложение заявки: имя файла, необязательное описание
// и содержимое.
type Attachment struct {
	FileName    string
	Description string
	Data        []byte
}

// CreateClaimRequest описывает данные новой заявки перед отправкой вендору.
// Запрос используется ровно один раз и после вызова CreateClaim не хранится.
type CreateClaimRequest struct {
	ServiceTag           string `validate:"required"`
	Description          string `validate:"required"`
	PartNumber           string
	SerialNumber         string
	IssueCategory        string
	TechEmail            string `validate:"omitempty,email"`
	PrimaryContactName   string
	PrimaryContactPhone  string
	TroubleshootingNotes string
	ReferencePO          string
	OnSiteTechnician     bool
	Attachments          []Attachment
}
