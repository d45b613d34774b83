// Package admin manages the locally stored product records edited from the
// admin screen. These records live in a storage.KV under the "product:"
// prefix and are unrelated to the static catalog.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
	"github.com/kenyaconnect/storefront/storage"
)

// KeyPrefix namespaces admin product records in the store.
const KeyPrefix = "product:"

var (
	ErrRecordNotFound     = errors.New("product record not found")
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	ErrInvalidRecord      = errors.New("invalid product record")
)

var (
	defaultRating = decimal.RequireFromString("4.5")
	maxRating     = decimal.NewFromInt(5)
)

// Confirmer is asked before a destructive delete. Returning false aborts it.
type Confirmer func(id string) bool

// Editor provides CRUD over admin product records.
type Editor struct {
	kv     storage.KV
	logger *zap.Logger
	now    func() time.Time
}

func NewEditor(kv storage.KV, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{kv: kv, logger: logger, now: time.Now}
}

func key(id string) string {
	return KeyPrefix + id
}

// List returns every record that can be read and decoded, ordered by key.
// Unreadable entries are logged and skipped.
func (e *Editor) List(ctx context.Context) ([]models.Product, error) {
	keys, err := e.kv.ListKeys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list product keys: %w", err)
	}

	products := make([]models.Product, 0, len(keys))
	for _, k := range keys {
		raw, err := e.kv.Get(ctx, k)
		if err != nil {
			e.logger.Warn("skipping unreadable product record", zap.String("key", k), zap.Error(err))
			continue
		}
		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			e.logger.Warn("skipping malformed product record", zap.String("key", k), zap.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (e *Editor) Get(ctx context.Context, id string) (*models.Product, error) {
	raw, err := e.kv.Get(ctx, key(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordNotFound, err)
	}
	return &p, nil
}

// RecordError reports a record the admin has to correct. It matches
// ErrInvalidRecord.
type RecordError struct {
	Message string
}

func (e *RecordError) Error() string { return e.Message }

func (e *RecordError) Is(target error) bool { return target == ErrInvalidRecord }

// Record is the editable form of a product. A zero ID creates a new record.
type Record struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       int64            `json:"price"`
	Category    string           `json:"category"`
	Images      []string         `json:"images"`
	Rating      *decimal.Decimal `json:"rating"`
	Reviews     *int             `json:"reviews"`
	InStock     *bool            `json:"in_stock"`
	Featured    bool             `json:"featured"`
	Tags        []string         `json:"tags"`
}

// Validate checks the required fields and returns the cleaned image list.
func (r Record) Validate() ([]string, error) {
	if strings.TrimSpace(r.Name) == "" || r.Price <= 0 || strings.TrimSpace(r.Category) == "" {
		return nil, &RecordError{Message: "Please fill in all required fields"}
	}
	images := cleanImages(r.Images)
	if len(images) == 0 {
		return nil, &RecordError{Message: "Please provide at least one image URL"}
	}
	if r.Rating != nil && (r.Rating.IsNegative() || r.Rating.GreaterThan(maxRating)) {
		return nil, &RecordError{Message: "Rating must be between 0 and 5"}
	}
	if r.Reviews != nil && *r.Reviews < 0 {
		return nil, &RecordError{Message: "Reviews cannot be negative"}
	}
	return images, nil
}

// Save creates or replaces a record. New records get a timestamp id; edits
// keep theirs.
func (e *Editor) Save(ctx context.Context, r Record) (*models.Product, error) {
	notifier := notify.FromContext(ctx)

	images, err := r.Validate()
	if err != nil {
		notifier.Notify(notify.Notice{Severity: notify.Error, Title: err.Error()})
		return nil, err
	}

	creating := r.ID == ""
	// Unset optional fields keep their stored value on edit.
	base := models.Product{Rating: defaultRating, InStock: true}
	if !creating {
		if existing, err := e.Get(ctx, r.ID); err == nil {
			base = *existing
		}
	}

	p := models.Product{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Price:       r.Price,
		Category:    strings.TrimSpace(r.Category),
		Images:      images,
		Rating:      base.Rating,
		Reviews:     base.Reviews,
		InStock:     base.InStock,
		Featured:    r.Featured,
		Tags:        r.Tags,
	}
	if creating {
		p.ID = e.newID()
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if r.Reviews != nil {
		p.Reviews = *r.Reviews
	}
	if r.InStock != nil {
		p.InStock = *r.InStock
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if err := e.kv.Set(ctx, key(p.ID), string(data)); err != nil {
		e.logger.Error("failed to save product", zap.String("id", p.ID), zap.Error(err))
		notifier.Notify(notify.Notice{Severity: notify.Error, Title: "Failed to save product"})
		return nil, fmt.Errorf("save product %s: %w", p.ID, err)
	}

	title := "Product updated successfully!"
	if creating {
		title = "Product added successfully!"
	}
	e.logger.Info("product saved", zap.String("id", p.ID), zap.Bool("created", creating))
	notifier.Notify(notify.Notice{Severity: notify.Success, Title: title})
	return &p, nil
}

// Delete removes a record after confirm approves it. There is no undo.
func (e *Editor) Delete(ctx context.Context, id string, confirm Confirmer) error {
	notifier := notify.FromContext(ctx)

	if confirm == nil || !confirm(id) {
		return ErrDeleteNotConfirmed
	}
	if err := e.kv.Delete(ctx, key(id)); err != nil {
		e.logger.Error("failed to delete product", zap.String("id", id), zap.Error(err))
		notifier.Notify(notify.Notice{Severity: notify.Error, Title: "Failed to delete product"})
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	e.logger.Info("product deleted", zap.String("id", id))
	notifier.Notify(notify.Notice{Severity: notify.Success, Title: "Product deleted successfully!"})
	return nil
}

func (e *Editor) newID() string {
	return "prod_" + strconv.FormatInt(e.now().UnixMilli(), 10)
}

// cleanImages trims each reference and drops blanks. A single entry holding
// several newline separated URLs is split.
func cleanImages(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, line := range strings.Split(entry, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
