package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

var validate = validator.New()

// HTTPClient — универсальный клиент self-dispatch API, параметризованный
// политикой вендора. Экземпляр принадлежит одной сессии и не рассчитан
// на конкурентные вызовы: их сериализует session.Session.
type HTTPClient struct {
	policy     Policy
	httpClient *retryablehttp.Client
	logger     *zap.Logger
	token      string
}

// NewHTTPClient создаёт клиент с указанной политикой вендора и таймаутом
// на каждый вызов.
func NewHTTPClient(policy Policy, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	base := strings.TrimRight(policy.BaseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	policy.BaseURL = base

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout

	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPClient{
		policy:     policy,
		httpClient: rc,
		logger:     logger,
	}
}

// VendorType идентифицирует вендора клиента.
func (c *HTTPClient) VendorType() model.VendorType {
	return c.policy.Vendor
}

type loginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	GrantType    string `json:"grant_type,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Authenticate выполняет вход по логину и паролю. Полученный токен
// сохраняется и добавляется ко всем последующим вызовам как bearer.
// Пароль после возврата из метода нигде не хранится.
func (c *HTTPClient) Authenticate(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return newError(c.policy.Vendor, KindValidation, "username and password are required")
	}

	body, err := json.Marshal(loginRequest{
		Username:     username,
		Password:     password,
		ClientID:     c.policy.ClientID,
		ClientSecret: c.policy.ClientSecret,
		GrantType:    c.policy.GrantType,
	})
	if err != nil {
		return wrapError(c.policy.Vendor, KindValidation, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.policy.BaseURL+c.policy.LoginPath, bytes.NewReader(body))
	if err != nil {
		return wrapError(c.policy.Vendor, KindTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapError(c.policy.Vendor, KindTransport, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusBadRequest:
		return newError(c.policy.Vendor, KindUnauthorized, "vendor rejected credentials")
	default:
		return newError(c.policy.Vendor, KindTransport, fmt.Sprintf("unexpected status: %d", resp.StatusCode))
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return wrapError(c.policy.Vendor, KindMalformedResponse, fmt.Errorf("decode response: %w", err))
	}
	if result.Token == "" {
		return newError(c.policy.Vendor, KindMalformedResponse, "login response is missing token")
	}

	c.token = result.Token
	c.logger.Debug("authenticated", zap.String("vendor", string(c.policy.Vendor)), zap.String("username", username))
	return nil
}

type claimPayload struct {
	ClaimID      string   `json:"claim_id"`
	ServiceTag   string   `json:"service_tag"`
	Description  string   `json:"description"`
	CreatedDate  string   `json:"created_date"`
	Status       string   `json:"status"`
	CreatedBy    string   `json:"created_by"`
	PartNumber   string   `json:"part_number,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
	ImagePaths   []string `json:"image_paths,omitempty"`
}

func (c *HTTPClient) toClaim(p claimPayload) (model.Claim, error) {
	if p.ClaimID == "" {
		return model.Claim{}, newError(c.policy.Vendor, KindMalformedResponse, "claim is missing claim_id")
	}

	// Формат даты у вендоров не гарантирован, нераспознанная дата не
	// считается ошибкой ответа.
	created, _ := time.Parse(time.RFC3339, p.CreatedDate)

	return model.Claim{
		ClaimID:      p.ClaimID,
		ServiceTag:   p.ServiceTag,
		Description:  p.Description,
		CreatedDate:  created,
		Status:       p.Status,
		CreatedBy:    p.CreatedBy,
		Vendor:       c.policy.Vendor,
		ImagePaths:   p.ImagePaths,
		PartNumber:   p.PartNumber,
		SerialNumber: p.SerialNumber,
	}, nil
}

// ListClaims возвращает заявки авторизованного техника. Непустой filterUser
// передаётся вендору как есть: серверная политика доступа к чужим заявкам
// остаётся на стороне вендора.
func (c *HTTPClient) ListClaims(ctx context.Context, filterUser string) ([]model.Claim, error) {
	u := c.policy.BaseURL + c.policy.ClaimsPath
	if filterUser != "" {
		u += "?" + c.policy.UserFilterParam + "=" + url.QueryEscape(filterUser)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindTransport, err)
	}
	c.authorize(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindTransport, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, newError(c.policy.Vendor, KindUnauthorized, "vendor rejected token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(c.policy.Vendor, KindTransport, fmt.Sprintf("unexpected status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindTransport, fmt.Errorf("read response: %w", err))
	}

	payloads, err := decodeClaimsBody(body)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindMalformedResponse, err)
	}

	claims := make([]model.Claim, 0, len(payloads))
	for _, p := range payloads {
		claim, err := c.toClaim(p)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	return claims, nil
}

// decodeClaimsBody принимает обе формы ответа со списком заявок:
// объект {"claims": [...]} и голый массив.
func decodeClaimsBody(body []byte) ([]claimPayload, error) {
	trimmed := bytes.TrimSpace(body)

	if bytes.HasPrefix(trimmed, []byte("[")) {
		var payloads []claimPayload
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, fmt.Errorf("decode claims array: %w", err)
		}
		return payloads, nil
	}

	var wrapped struct {
		Claims []claimPayload `json:"claims"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode claims object: %w", err)
	}
	return wrapped.Claims, nil
}

type warrantyPayload struct {
	ServiceTag   string `json:"service_tag"`
	ProductName  string `json:"product_name"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Status       string `json:"status"`
	IsValid      bool   `json:"is_valid"`
	ServiceLevel string `json:"service_level,omitempty"`
}

// CheckWarranty возвращает состояние гарантии по сервисному тегу.
// Неизвестный тег — не ошибка: возвращается запись с IsValid=false.
func (c *HTTPClient) CheckWarranty(ctx context.Context, serviceTag string) (*model.WarrantyInfo, error) {
	serviceTag = strings.TrimSpace(serviceTag)
	if serviceTag == "" {
		return nil, newError(c.policy.Vendor, KindValidation, "service tag is required")
	}

	u := c.policy.BaseURL + c.policy.WarrantyPath + "/" + url.PathEscape(serviceTag)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindTransport, err)
	}
	c.authorize(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindTransport, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &model.WarrantyInfo{
			ServiceTag: serviceTag,
			Status:     "Not Found",
			IsValid:    false,
			Vendor:     c.policy.Vendor,
		}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, newError(c.policy.Vendor, KindUnauthorized, "vendor rejected token")
	case resp.StatusCode != http.StatusOK:
		return nil, newError(c.policy.Vendor, KindTransport, fmt.Sprintf("unexpected status: %d", resp.StatusCode))
	}

	var payload warrantyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, wrapError(c.policy.Vendor, KindMalformedResponse, fmt.Errorf("decode response: %w", err))
	}

	// Вендор проставляется клиентом: собственный ответ вендора метки
	// не несёт.
	info := &model.WarrantyInfo{
		ServiceTag:   payload.ServiceTag,
		ProductName:  payload.ProductName,
		Status:       payload.Status,
		IsValid:      payload.IsValid,
		ServiceLevel: payload.ServiceLevel,
		Vendor:       c.policy.Vendor,
	}
	if info.ServiceTag == "" {
		info.ServiceTag = serviceTag
	}
	if t, err := time.Parse(time.RFC3339, payload.StartDate); err == nil {
		info.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, payload.EndDate); err == nil {
		info.EndDate = &t
	}

	return info, nil
}

type vendorErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateClaim регистрирует новую заявку. Вся локальная валидация, включая
// границы числа вложений из политики вендора, выполняется до сетевого
// вызова. Запрос не ретраится: повтор может продублировать заявку.
func (c *HTTPClient) CreateClaim(ctx context.Context, req *model.CreateClaimRequest) (*model.Claim, error) {
	if req == nil {
		return nil, newError(c.policy.Vendor, KindValidation, "request is required")
	}
	if err := validate.Struct(req); err != nil {
		return nil, wrapError(c.policy.Vendor, KindValidation, err)
	}
	if err := c.checkAttachmentBounds(len(req.Attachments)); err != nil {
		return nil, err
	}

	body, contentType, err := encodeCreateClaim(c.policy, req)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindValidation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.policy.BaseURL+c.policy.ClaimsPath, bytes.NewReader(body))
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindTransport, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	c.authorize(httpReq.Header)

	// Нижележащий *http.Client без ретраев.
	resp, err := c.httpClient.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, wrapError(c.policy.Vendor, KindTransport, fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, newError(c.policy.Vendor, KindUnauthorized, "vendor rejected token")
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		var ve vendorErrorPayload
		if err := json.NewDecoder(resp.Body).Decode(&ve); err != nil || ve.Message == "" {
			ve.Message = fmt.Sprintf("claim rejected with status %d", resp.StatusCode)
		}
		return nil, &Error{Kind: KindVendorRejected, Vendor: c.policy.Vendor, Code: ve.Code, Message: ve.Message}
	default:
		return nil, newError(c.policy.Vendor, KindTransport, fmt.Sprintf("unexpected status: %d", resp.StatusCode))
	}

	var payload claimPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, wrapError(c.policy.Vendor, KindMalformedResponse, fmt.Errorf("decode response: %w", err))
	}

	claim, err := c.toClaim(payload)
	if err != nil {
		return nil, err
	}

	c.logger.Info("claim created",
		zap.String("vendor", string(c.policy.Vendor)),
		zap.String("claimID", claim.ClaimID),
		zap.String("serviceTag", claim.ServiceTag))

	return &claim, nil
}

func (c *HTTPClient) checkAttachmentBounds(n int) error {
	if n < c.policy.MinAttachments {
		return newError(c.policy.Vendor, KindValidation,
			fmt.Sprintf("at least %d attachment(s) required, got %d", c.policy.MinAttachments, n))
	}
	if c.policy.MaxAttachments > 0 && n > c.policy.MaxAttachments {
		return newError(c.policy.Vendor, KindValidation,
			fmt.Sprintf("at most %d attachment(s) allowed, got %d", c.policy.MaxAttachments, n))
	}
	return nil
}

func (c *HTTPClient) authorize(h http.Header) {
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}

// encodeCreateClaim кодирует заявку в multipart: текстовые поля как есть,
// каждое вложение — отдельной бинарной частью <prefix>N, нумерация с единицы,
// в порядке исходного списка. Содержимое всегда отправляется как image/jpeg,
// без определения и конвертации исходного формата.
func encodeCreateClaim(p Policy, req *model.CreateClaimRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	textFields := []struct{ name, value string }{
		{"service_tag", req.ServiceTag},
		{"description", req.Description},
		{"part_number", req.PartNumber},
		{"serial_number", req.SerialNumber},
		{"issue_category", req.IssueCategory},
		{"tech_email", req.TechEmail},
		{"primary_contact_name", req.PrimaryContactName},
		{"primary_contact_phone", req.PrimaryContactPhone},
		{"troubleshooting_notes", req.TroubleshootingNotes},
		{"reference_po_number", req.ReferencePO},
	}
	for _, f := range textFields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if req.OnSiteTechnician {
		if err := w.WriteField("request_on_site_technician", "true"); err != nil {
			return nil, "", fmt.Errorf("write field request_on_site_technician: %w", err)
		}
	}

	for i, att := range req.Attachments {
		name := fmt.Sprintf("%s%d", p.ImageFieldPrefix, i+1)
		fileName := att.FileName
		if fileName == "" {
			fileName = name + ".jpg"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, fileName))
		h.Set("Content-Type", "image/jpeg")

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", name, err)
		}

		if att.Description != "" {
			if err := w.WriteField(name+"_description", att.Description); err != nil {
				return nil, "", fmt.Errorf("write field %s_description: %w", name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
