// Package session управляет авторизованной сессией техника у одного вендора.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/model"
	"github.com/mmeshcher/selfdispatch-system/internal/vendorapi"
)

// State описывает состояние сессии.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateIdle            State = "idle"
	StateLoading         State = "loading"
	StateError           State = "error"
)

var (
	// ErrBusy возвращается, когда другой вызов к вендору ещё не завершён.
	// В один момент времени сессия держит не более одного вызова.
	ErrBusy = errors.New("another operation is in flight")
	// ErrNotAuthenticated возвращается для операций до успешного входа.
	ErrNotAuthenticated = errors.New("session is not authenticated")
	// ErrEmptyCredentials возвращается при пустом логине или пароле,
	// сетевой вызов при этом не выполняется.
	ErrEmptyCredentials = errors.New("username and password are required")
	// ErrNoClient возвращается при попытке входа после Logout.
	ErrNoClient = errors.New("session has no bound vendor client")
)

// Session держит привязанного клиента вендора и состояние текущей сессии.
// Клиент выбирается один раз при создании сессии и не меняется до Logout.
type Session struct {
	logger *zap.Logger

	mu      sync.Mutex
	client  vendorapi.Client
	state   State
	creds   *model.UserCredentials
	filter  string
	claims  []model.Claim
	lastErr error
}

// New создаёт сессию с привязанным клиентом вендора.
func New(client vendorapi.Client, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		logger: logger,
		client: client,
		state:  StateUnauthenticated,
	}
}

// Login выполняет вход. Пустые учётные данные отклоняются локально.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrEmptyCredentials
	}

	s.mu.Lock()
	if s.client == nil {
		s.mu.Unlock()
		return ErrNoClient
	}
	if s.state == StateAuthenticating || s.state == StateLoading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateAuthenticating
	client := s.client
	s.mu.Unlock()

	err := client.Authenticate(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateUnauthenticated
		s.lastErr = err
		s.logger.Warn("login failed", zap.String("vendor", string(client.VendorType())), zap.Error(err))
		return err
	}

	s.creds = &model.UserCredentials{
		Vendor:   client.VendorType(),
		Username: username,
	}
	s.state = StateIdle
	s.lastErr = nil
	s.logger.Info("logged in", zap.String("vendor", string(client.VendorType())), zap.String("username", username))
	return nil
}

// RefreshClaims перечитывает список заявок с активным фильтром и целиком
// заменяет им сохранённый список.
func (s *Session) RefreshClaims(ctx context.Context) ([]model.Claim, error) {
	client, filter, err := s.begin()
	if err != nil {
		return nil, err
	}

	claims, err := client.ListClaims(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateError
		s.lastErr = err
		return nil, err
	}

	s.claims = claims
	s.state = StateIdle
	s.lastErr = nil
	return claims, nil
}

// ApplyFilter устанавливает серверный фильтр по пользователю и перечитывает
// список заявок.
func (s *Session) ApplyFilter(ctx context.Context, filter string) ([]model.Claim, error) {
	s.mu.Lock()
	if s.creds == nil {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	s.filter = filter
	s.mu.Unlock()

	return s.RefreshClaims(ctx)
}

// ClearFilter сбрасывает фильтр и перечитывает список заявок.
func (s *Session) ClearFilter(ctx context.Context) ([]model.Claim, error) {
	return s.ApplyFilter(ctx, "")
}

// CheckWarranty делегирует проверку гарантии клиенту вендора.
func (s *Session) CheckWarranty(ctx context.Context, serviceTag string) (*model.WarrantyInfo, error) {
	client, _, err := s.begin()
	if err != nil {
		return nil, err
	}

	info, err := client.CheckWarranty(ctx, serviceTag)
	s.finish(err)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// CreateClaim регистрирует заявку и при успехе перечитывает список,
// чтобы новая заявка стала видимой. Оптимистичной локальной вставки нет.
func (s *Session) CreateClaim(ctx context.Context, req *model.CreateClaimRequest) (*model.Claim, error) {
	client, filter, err := s.begin()
	if err != nil {
		return nil, err
	}

	claim, err := client.CreateClaim(ctx, req)
	if err != nil {
		s.finish(err)
		return nil, err
	}

	claims, listErr := client.ListClaims(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	if listErr != nil {
		// Заявка уже создана, неудачное обновление списка её не отменяет.
		s.logger.Warn("refresh after create failed", zap.Error(listErr))
	} else {
		s.claims = claims
	}
	s.state = StateIdle
	s.lastErr = nil
	return claim, nil
}

// Logout завершает сессию и отбрасывает клиента и учётные данные.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client = nil
	s.creds = nil
	s.claims = nil
	s.filter = ""
	s.lastErr = nil
	s.state = StateUnauthenticated
}

// State возвращает текущее состояние сессии.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError возвращает ошибку последней завершившейся операции.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Filter возвращает активный фильтр по пользователю.
func (s *Session) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Claims возвращает копию последнего полученного списка заявок.
func (s *Session) Claims() []model.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims := make([]model.Claim, len(s.claims))
	copy(claims, s.claims)
	return claims
}

// Credentials возвращает данные авторизованного техника или nil.
func (s *Session) Credentials() *model.UserCredentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds == nil {
		return nil
	}
	creds := *s.creds
	return &creds
}

// begin переводит сессию в StateLoading, гарантируя не более одного
// вызова к вендору одновременно.
func (s *Session) begin() (vendorapi.Client, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds == nil || s.client == nil {
		return nil, "", ErrNotAuthenticated
	}
	if s.state == StateAuthenticating || s.state == StateLoading {
		return nil, "", ErrBusy
	}

	s.state = StateLoading
	return s.client, s.filter, nil
}

func (s *Session) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateError
		s.lastErr = err
		return
	}
	s.state = StateIdle
	s.lastErr = nil
}
