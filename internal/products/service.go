package products

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/storefront/internal/auth"
	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

const (
	msgNoCandidates    = "Kindly provide valid product data"
	msgNotFound        = "Product not found"
	msgUpdateForbidden = "You are not authorized to update this product"
	msgDeleteForbidden = "You are not authorized to delete this product"
	msgUploadForbidden = "You do not have permission to update this product"
	msgNoFile          = "No file uploaded"
	msgNotImage        = "Please upload an image file (jpeg, png, gif or webp)"
	msgNothingToUpdate = "Please provide product fields to update"
)

// sniffLen is how much of an upload is inspected for its content type.
const sniffLen = 3072

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// AssetStore persists uploaded objects and returns their public URL.
type AssetStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Service implements product use cases gated by ownership.
type Service struct {
	repo      Repository
	assets    AssetStore
	logger    *slog.Logger
	validator *validator.Validate
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a product Service.
func NewService(repo Repository, assets AssetStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	v := httpx.NewValidator()
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return validPrice(fl.Field().Float())
	})
	s := &Service{
		repo:      repo,
		assets:    assets,
		logger:    logger,
		validator: v,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of the caller's products and the total matching count.
func (s *Service) List(ctx context.Context, caller auth.Identity, q ListQuery) (ListResult, error) {
	var (
		items []Product
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, caller.ID, q.Name)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, caller.ID, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, fmt.Errorf("products: list: %w", err)
	}

	projected := make([]map[string]any, 0, len(items))
	for _, p := range items {
		projected = append(projected, p.Project(q.Fields))
	}
	return ListResult{Items: projected, Total: total}, nil
}

// Mine returns every product owned by caller.
func (s *Service) Mine(ctx context.Context, caller auth.Identity) ([]Product, error) {
	products, err := s.repo.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("products: list mine: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(msgNotFound)
		}
		return nil, fmt.Errorf("products: get: %w", err)
	}
	return product, nil
}

// BulkCreate inserts every acceptable candidate for caller. Invalid candidates are skipped;
// when none survive the call fails without writing.
func (s *Service) BulkCreate(ctx context.Context, caller auth.Identity, raw []json.RawMessage) (BulkResult, error) {
	now := s.now().UTC()
	accepted := make([]Product, 0, len(raw))
	for _, entry := range raw {
		if product, ok := acceptCandidate(entry, caller.ID, now); ok {
			accepted = append(accepted, product)
		}
	}
	if len(accepted) == 0 {
		return BulkResult{}, httpx.Validation(msgNoCandidates)
	}
	if skipped := len(raw) - len(accepted); skipped > 0 {
		s.logger.Debug("bulk create skipped candidates", slog.Int("skipped", skipped), slog.String("owner_id", caller.ID.String()))
	}

	if err := s.repo.InsertMany(ctx, accepted); err != nil {
		return BulkResult{}, fmt.Errorf("products: bulk create: %w", err)
	}
	ids := make([]uuid.UUID, len(accepted))
	for i, p := range accepted {
		ids[i] = p.ID
	}
	return BulkResult{InsertedCount: len(accepted), InsertedIDs: ids}, nil
}

// Update applies in to the product after checking that caller owns it.
func (s *Service) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in UpdateInput) (*Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(current.OwnerID, caller, msgUpdateForbidden); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, httpx.Validation(msgNothingToUpdate)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, httpx.ValidationFrom(err)
	}

	updated, err := s.repo.Update(ctx, caller.ID, id, in, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.NotFound(msgNotFound)
		}
		return nil, fmt.Errorf("products: update: %w", err)
	}
	return updated, nil
}

// Delete removes the product after checking that caller owns it.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(current.OwnerID, caller, msgDeleteForbidden); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, caller.ID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.NotFound(msgNotFound)
		}
		return fmt.Errorf("products: delete: %w", err)
	}
	return nil
}

// UploadThumbnail stores an image for the caller's product and records its URL.
// A nil upload means the request carried no file.
func (s *Service) UploadThumbnail(ctx context.Context, caller auth.Identity, id uuid.UUID, upload *Upload) (string, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("products: load for upload: %w", err)
	}
	if current == nil || !auth.CanMutate(current.OwnerID, caller) {
		return "", httpx.Authorization(msgUploadForbidden)
	}
	if upload == nil || upload.Body == nil || upload.Size == 0 {
		return "", httpx.Validation(msgNoFile)
	}

	body := bufio.NewReaderSize(upload.Body, sniffLen)
	head, err := body.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("products: read upload: %w", err)
	}
	kind := mimetype.Detect(head)
	if !mimetype.EqualsAny(kind.String(), imageTypes...) {
		return "", httpx.Validation(msgNotImage)
	}

	key := fmt.Sprintf("products/%s/%s/%s%s", current.OwnerID, current.ID, uuid.NewString(), kind.Extension())
	url, err := s.assets.Put(ctx, key, kind.String(), body, upload.Size)
	if err != nil {
		return "", fmt.Errorf("products: store thumbnail: %w", err)
	}
	if err := s.repo.SetThumbnail(ctx, caller.ID, id, url, s.now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", httpx.Authorization(msgUploadForbidden)
		}
		return "", fmt.Errorf("products: save thumbnail: %w", err)
	}
	s.logger.Info("thumbnail stored", slog.String("product_id", id.String()), slog.String("key", key))
	return url, nil
}
