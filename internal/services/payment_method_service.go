package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go-cosmetics/internal/models"
)

const (
	PaymentCOD   = "COD"
	PaymentVNPay = "VNPAY"
)

type PaymentMethodService struct {
	mu      sync.RWMutex
	methods map[int]*models.PaymentMethod
	nextID  int
}

// NewPaymentMethodService starts with cash on delivery and VNPay.
func NewPaymentMethodService() *PaymentMethodService {
	s := &PaymentMethodService{methods: make(map[int]*models.PaymentMethod), nextID: 1}
	_, _ = s.Create(models.CreatePaymentMethodRequest{Code: PaymentCOD, Name: "Thanh toán khi nhận hàng"})
	_, _ = s.Create(models.CreatePaymentMethodRequest{Code: PaymentVNPay, Name: "Thanh toán qua VNPay", Redirect: true})
	return s
}

func (s *PaymentMethodService) Create(req models.CreatePaymentMethodRequest) (*models.PaymentMethod, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: code and name are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.methods {
		if m.Code == code {
			return nil, fmt.Errorf("payment method %s: %w", code, ErrConflict)
		}
	}
	m := &models.PaymentMethod{ID: s.nextID, Code: code, Name: req.Name, Active: true, Redirect: req.Redirect}
	s.methods[m.ID] = m
	s.nextID++

	out := *m
	return &out, nil
}

func (s *PaymentMethodService) GetByID(id int) (*models.PaymentMethod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.methods[id]
	if !exists {
		return nil, false
	}
	out := *m
	return &out, true
}

func (s *PaymentMethodService) List(activeOnly bool) []models.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PaymentMethod, 0, len(s.methods))
	for _, m := range s.methods {
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b models.PaymentMethod) int { return a.ID - b.ID })
	return out
}

func (s *PaymentMethodService) SetActive(id int, active bool) (*models.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.methods[id]
	if !exists {
		return nil, fmt.Errorf("payment method %d: %w", id, ErrNotFound)
	}
	m.Active = active
	out := *m
	return &out, nil
}
