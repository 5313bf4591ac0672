// Package service provides the inventory business logic shared by every adapter.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	perrors "github.com/abgdnv/stockguard/internal/inventory/errors"
	"github.com/abgdnv/stockguard/internal/inventory/risk"
	"github.com/abgdnv/stockguard/internal/inventory/store"
	"github.com/abgdnv/stockguard/internal/metrics"
	"github.com/abgdnv/stockguard/internal/report"
	"github.com/abgdnv/stockguard/pkg/messaging"
	"github.com/abgdnv/stockguard/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
)

// InventoryService defines the operations the console and HTTP adapters expose.
type InventoryService interface {
	// Add validates and stores a new product.
	// Returns ErrValidation if the input is invalid or the ID already exists.
	Add(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// UpdateStock replaces the stock of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateStock(ctx context.Context, id string, stock int) (*ProductDto, error)

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error

	// List returns all products in insertion order.
	List(ctx context.Context) []ProductDto

	// Find retrieves a single product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Find(ctx context.Context, id string) (*ProductDto, error)

	// Dashboard summarises the table.
	Dashboard(ctx context.Context) DashboardDto

	// Recommendations classifies every product in insertion order.
	Recommendations(ctx context.Context) ([]RecommendationDto, error)

	// Export renders the table in format and returns the written file path.
	// Returns report.ErrRendererUnavailable or report.ErrNothingToReport.
	Export(ctx context.Context, format string) (string, error)

	// ExportFormats lists the formats Export accepts.
	ExportFormats() []string

	// LowLimit is the stock level below which a product counts as low stock.
	LowLimit() int
}

// Exporter writes report files.
type Exporter interface {
	Available(format string) bool
	Formats() []string
	Export(format string, rows []report.Row, meta report.Meta) (string, error)
}

// Recorder receives service metrics.
type Recorder interface {
	Mutation(operation, outcome string)
	Table(products, lowStock int)
	Alert(outcome string)
	Report(format, outcome string)
}

// Service implements InventoryService on top of a ProductStore.
type Service struct {
	store      store.ProductStore
	classifier risk.Classifier
	validate   *validator.Validate
	exporter   Exporter
	publisher  messaging.Publisher
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

var _ InventoryService = (*Service)(nil)

// Option configures optional Service collaborators.
type Option func(*Service)

// WithPublisher sends low-stock alerts through publisher.
func WithPublisher(publisher messaging.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithRecorder records metrics through recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces the clock used for alert and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. Alerts are dropped and metrics discarded unless options say otherwise.
func NewService(st store.ProductStore, classifier risk.Classifier, exporter Exporter, opts ...Option) *Service {
	s := &Service{
		store:      st,
		classifier: classifier,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		exporter:   exporter,
		publisher:  messaging.NopPublisher{},
		recorder:   nopRecorder{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	ID          string `json:"id"           validate:"required,max=64"`
	Name        string `json:"name"         validate:"required,max=100"`
	Stock       int    `json:"stock"`
	DailyDemand int    `json:"daily_demand" validate:"min=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Stock       int    `json:"stock"`
	DailyDemand int    `json:"daily_demand"`
}

// StockUpdateDto represents the data transfer object for updating product stock.
type StockUpdateDto struct {
	Stock *int `json:"stock" validate:"required"`
}

// DashboardDto summarises the table.
type DashboardDto struct {
	TotalProducts     int    `json:"total_products"`
	TotalStock        int    `json:"total_stock"`
	LowStock          int    `json:"low_stock"`
	LowLimit          int    `json:"low_limit"`
	DurabilityWarning string `json:"durability_warning,omitempty"`
}

// RecommendationDto is the risk assessment of one product.
type RecommendationDto struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Stock          int       `json:"stock"`
	DailyDemand    int       `json:"daily_demand"`
	WeekForecast   int       `json:"week_forecast"`
	PriorityScore  int       `json:"priority_score"`
	Tier           risk.Tier `json:"tier"`
	Recommendation string    `json:"recommendation"`
}

// Add trims the ID and name, validates the product and stores it.
func (s *Service) Add(ctx context.Context, dto ProductCreateDto) (*ProductDto, error) {
	dto.ID = strings.TrimSpace(dto.ID)
	dto.Name = strings.TrimSpace(dto.Name)
	if err := s.validate.Struct(dto); err != nil {
		s.recorder.Mutation("add", metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %w", perrors.ErrValidation, err)
	}

	p, err := s.store.Add(dto.ID, dto.Name, dto.Stock, dto.DailyDemand)
	if err != nil {
		s.recordMutation("add", err)
		return nil, fmt.Errorf("failed to add product %q: %w", dto.ID, err)
	}
	s.recordMutation("add", nil)
	s.logger.InfoContext(ctx, "product added", "product_id", p.ID, "stock", p.Stock, "daily_demand", p.DailyDemand)
	s.checkLowStock(ctx, p)
	return toDto(p), nil
}

// UpdateStock replaces the stock of a product and returns the updated product.
func (s *Service) UpdateStock(ctx context.Context, id string, stock int) (*ProductDto, error) {
	p, err := s.store.UpdateStock(id, stock)
	if err != nil {
		s.recordMutation("update_stock", err)
		return nil, fmt.Errorf("failed to update stock of product %q: %w", id, err)
	}
	s.recordMutation("update_stock", nil)
	s.logger.InfoContext(ctx, "stock updated", "product_id", p.ID, "stock", p.Stock)
	s.checkLowStock(ctx, p)
	return toDto(p), nil
}

// Delete removes a product. A missing ID returns ErrProductNotFound, as in UpdateStock.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(id)
	if err != nil {
		s.recordMutation("delete", err)
		return fmt.Errorf("failed to delete product %q: %w", id, err)
	}
	if !deleted {
		s.recorder.Mutation("delete", metrics.OutcomeNotFound)
		return fmt.Errorf("failed to delete product %q: %w", id, perrors.ErrProductNotFound)
	}
	s.recordMutation("delete", nil)
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func (s *Service) List(_ context.Context) []ProductDto {
	products := s.store.Snapshot()
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toDto(p)
	}
	return dtos
}

func (s *Service) Find(_ context.Context, id string) (*ProductDto, error) {
	p, err := s.store.Find(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %q: %w", id, err)
	}
	return toDto(p), nil
}

// Dashboard counts products and stock. A failed last persist is reported as a warning.
func (s *Service) Dashboard(_ context.Context) DashboardDto {
	products := s.store.Snapshot()
	d := DashboardDto{
		TotalProducts: len(products),
		LowLimit:      s.classifier.LowLimit,
	}
	for _, p := range products {
		d.TotalStock += p.Stock
		if s.classifier.IsLowStock(p.Stock) {
			d.LowStock++
		}
	}
	if err := s.store.DurabilityErr(); err != nil {
		d.DurabilityWarning = "changes are not saved to disk: " + err.Error()
	}
	return d
}

// Recommendations classifies every product. A product with negative daily demand fails the call.
func (s *Service) Recommendations(_ context.Context) ([]RecommendationDto, error) {
	products := s.store.Snapshot()
	recs := make([]RecommendationDto, 0, len(products))
	for _, p := range products {
		a, err := s.classifier.Assess(p)
		if err != nil {
			return nil, fmt.Errorf("%w: product %q: %w", perrors.ErrValidation, p.ID, err)
		}
		recs = append(recs, RecommendationDto{
			ID:             p.ID,
			Name:           p.Name,
			Stock:          p.Stock,
			DailyDemand:    p.DailyDemand,
			WeekForecast:   a.WeekForecast,
			PriorityScore:  a.PriorityScore,
			Tier:           a.Tier,
			Recommendation: a.Recommendation,
		})
	}
	return recs, nil
}

// Export renders a snapshot of the table. Products that cannot be classified are exported without a tier.
func (s *Service) Export(ctx context.Context, format string) (string, error) {
	if !s.exporter.Available(format) {
		s.recorder.Report(format, metrics.OutcomeRejected)
		return "", fmt.Errorf("%w: %q is not enabled", report.ErrRendererUnavailable, format)
	}

	products := s.store.Snapshot()
	rows := make([]report.Row, len(products))
	for i, p := range products {
		rows[i] = report.Row{Product: p}
		if a, err := s.classifier.Assess(p); err == nil {
			rows[i].Tier = a.Tier
		}
	}

	path, err := s.exporter.Export(format, rows, report.Meta{GeneratedAt: s.now(), LowLimit: s.classifier.LowLimit})
	if err != nil {
		outcome := metrics.OutcomeFailed
		if errors.Is(err, report.ErrNothingToReport) {
			outcome = metrics.OutcomeRejected
		}
		s.recorder.Report(format, outcome)
		return "", err
	}
	s.recorder.Report(format, metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "report exported", "format", format, "path", path, "products", len(rows))
	return path, nil
}

func (s *Service) ExportFormats() []string {
	return s.exporter.Formats()
}

func (s *Service) LowLimit() int {
	return s.classifier.LowLimit
}

// checkLowStock publishes a LowStockEvent when p is high risk. Publish failures are logged only.
func (s *Service) checkLowStock(ctx context.Context, p store.Product) {
	a, err := s.classifier.Assess(p)
	if err != nil {
		s.logger.WarnContext(ctx, "product cannot be classified", "product_id", p.ID, "error", err)
		return
	}
	if a.Tier != risk.HighRisk {
		return
	}
	event := events.LowStockEvent{
		ProductID:     p.ID,
		ProductName:   p.Name,
		Stock:         p.Stock,
		DailyDemand:   p.DailyDemand,
		Tier:          string(a.Tier),
		PriorityScore: a.PriorityScore,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.recorder.Alert(metrics.OutcomeFailed)
		s.logger.ErrorContext(ctx, "failed to publish low stock alert", "product_id", p.ID, "error", err)
		return
	}
	s.recorder.Alert(metrics.OutcomeSuccess)
	s.logger.DebugContext(ctx, "low stock alert published", "product_id", p.ID, "stock", p.Stock)
}

func (s *Service) recordMutation(operation string, err error) {
	switch {
	case err == nil:
		s.recorder.Mutation(operation, metrics.OutcomeSuccess)
		s.refreshTable()
	case errors.Is(err, perrors.ErrValidation):
		s.recorder.Mutation(operation, metrics.OutcomeRejected)
	case errors.Is(err, perrors.ErrProductNotFound):
		s.recorder.Mutation(operation, metrics.OutcomeNotFound)
	default:
		s.recorder.Mutation(operation, metrics.OutcomeFailed)
	}
}

// refreshTable publishes the table gauges.
func (s *Service) refreshTable() {
	products := s.store.Snapshot()
	low := 0
	for _, p := range products {
		if s.classifier.IsLowStock(p.Stock) {
			low++
		}
	}
	s.recorder.Table(len(products), low)
}

// Sync publishes the gauges of a freshly loaded table.
func (s *Service) Sync() {
	s.refreshTable()
}

func toDto(p store.Product) *ProductDto {
	return &ProductDto{
		ID:          p.ID,
		Name:        p.Name,
		Stock:       p.Stock,
		DailyDemand: p.DailyDemand,
	}
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string, string) {}
func (nopRecorder) Table(int, int)          {}
func (nopRecorder) Alert(string)            {}
func (nopRecorder) Report(string, string)   {}
