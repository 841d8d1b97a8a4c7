package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agrirate/agrirate/internal/domain"
	"github.com/agrirate/agrirate/internal/policy"
	"github.com/agrirate/agrirate/internal/repository"
)

// maxSubmitAttempts bounds how often a submission is retried after losing a
// first-insert race for the same (user, product).
const maxSubmitAttempts = 3

// Default input limits, overridable through RatingOptions.
const (
	DefaultCommentMaxLength = 2000
	DefaultMaxImages        = 10
)

// SubmitStatus reports which path a submission took.
type SubmitStatus int

const (
	StatusCreated SubmitStatus = iota + 1
	StatusUpdated
)

func (s SubmitStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// SubmitInput is a create-or-update request for the caller's own rating.
type SubmitInput struct {
	ProductID string            `json:"productId" validate:"required,max=64"`
	Value     int               `json:"value" validate:"gte=1,lte=5"`
	Comment   OptionalString    `json:"comment" validate:"-"`
	Images    []domain.ImageRef `json:"images" validate:"dive"`
}

// SubmitResult carries the stored rating and whether it was created or updated.
type SubmitResult struct {
	Rating domain.Rating
	Status SubmitStatus
}

// AdminUpdateInput overwrites the value of any rating, and its comment when
// the comment key is present.
type AdminUpdateInput struct {
	Value   int            `json:"value" validate:"gte=1,lte=5"`
	Comment OptionalString `json:"comment" validate:"-"`
}

// AdminListInput selects one page of the moderation list. Limit 0 returns everything.
type AdminListInput struct {
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
	Cursor string `json:"cursor"`
}

// RatingOptions tunes input limits.
type RatingOptions struct {
	CommentMaxLength int
	MaxImages        int
}

// RatingService implements submission, public listing and admin moderation.
type RatingService struct {
	repo     *repository.Repository
	logger   *zap.Logger
	validate *validator.Validate
	opts     RatingOptions
}

// NewRatingService builds a RatingService. Zero options fall back to defaults.
func NewRatingService(repo *repository.Repository, logger *zap.Logger, opts RatingOptions) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CommentMaxLength <= 0 {
		opts.CommentMaxLength = DefaultCommentMaxLength
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = DefaultMaxImages
	}
	return &RatingService{
		repo:     repo,
		logger:   logger.Named("ratings"),
		validate: newValidator(),
		opts:     opts,
	}
}

// AuthorizeSubmit reports whether actor may submit ratings at all. Handlers
// call it before reading the request body.
func (s *RatingService) AuthorizeSubmit(actor domain.Actor) error {
	if err := policy.Decide(actor, policy.CreateRating, "").Err(); err != nil {
		return fmt.Errorf("submit rating: %w", err)
	}
	return nil
}

// Submit creates the caller's rating for a product or updates the existing one.
// All writes happen in one transaction; a lost first-insert race is retried
// and resolves as an update.
func (s *RatingService) Submit(ctx context.Context, actor domain.Actor, in SubmitInput) (SubmitResult, error) {
	if err := s.AuthorizeSubmit(actor); err != nil {
		return SubmitResult{}, err
	}

	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Comment = normalizeComment(in.Comment)
	if err := s.validateSubmit(in); err != nil {
		return SubmitResult{}, err
	}

	var (
		result SubmitResult
		err    error
	)
	for attempt := 1; attempt <= maxSubmitAttempts; attempt++ {
		err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
			var txErr error
			result, txErr = s.submitTx(ctx, tx, actor, in)
			return txErr
		})
		if err == nil {
			s.logger.Info("rating submitted",
				zap.String("rating_id", result.Rating.ID),
				zap.String("product_id", in.ProductID),
				zap.String("user_id", actor.ID),
				zap.Stringer("status", result.Status),
				zap.Int("attempt", attempt),
			)
			return result, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
		s.logger.Debug("rating submit lost insert race, retrying",
			zap.String("product_id", in.ProductID),
			zap.String("user_id", actor.ID),
			zap.Int("attempt", attempt),
		)
	}

	return SubmitResult{}, s.submitError(actor, in.ProductID, err)
}

// submitError maps the final failure of Submit. A race still unresolved after
// every attempt is an internal failure, not a conflict for the caller.
func (s *RatingService) submitError(actor domain.Actor, productID string, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, repository.ErrConflict):
		s.logger.Error("rating submit exhausted retries",
			zap.String("product_id", productID),
			zap.String("user_id", actor.ID),
			zap.Int("attempts", maxSubmitAttempts),
			zap.Error(err),
		)
		return fmt.Errorf("submit rating: %w after %d attempts", errSubmitContention, maxSubmitAttempts)
	default:
		return mapRepoError("submit rating", err)
	}
}

func (s *RatingService) submitTx(ctx context.Context, tx *repository.Repository, actor domain.Actor, in SubmitInput) (SubmitResult, error) {
	exists, err := tx.Products.Exists(ctx, in.ProductID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return SubmitResult{}, fmt.Errorf("product %q: %w", in.ProductID, ErrNotFound)
	}

	var (
		ratingID string
		status   SubmitStatus
	)
	existing, err := tx.Ratings.FindByUserAndProduct(ctx, actor.ID, in.ProductID)
	switch {
	case err == nil:
		if err := policy.Decide(actor, policy.UpdateOwnRating, existing.UserID).Err(); err != nil {
			return SubmitResult{}, err
		}
		updated, err := tx.Ratings.Update(ctx, existing.ID, repository.RatingUpdateParams{
			Value:      in.Value,
			Comment:    in.Comment.Value,
			SetComment: in.Comment.Set,
		})
		if err != nil {
			return SubmitResult{}, err
		}
		if len(in.Images) > 0 {
			if _, err := tx.Ratings.ReplaceImages(ctx, updated.ID, in.Images); err != nil {
				return SubmitResult{}, err
			}
		}
		ratingID, status = updated.ID, StatusUpdated
	case errors.Is(err, repository.ErrNotFound):
		created, err := tx.Ratings.Create(ctx, repository.RatingCreateParams{
			UserID:    actor.ID,
			ProductID: in.ProductID,
			Value:     in.Value,
			Comment:   in.Comment.Value,
		})
		if err != nil {
			return SubmitResult{}, err
		}
		if len(in.Images) > 0 {
			if _, err := tx.Ratings.AddImages(ctx, created.ID, in.Images); err != nil {
				return SubmitResult{}, err
			}
		}
		ratingID, status = created.ID, StatusCreated
	default:
		return SubmitResult{}, fmt.Errorf("find rating: %w", err)
	}

	rating, err := tx.Ratings.Get(ctx, ratingID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("reload rating: %w", err)
	}
	return SubmitResult{Rating: rating, Status: status}, nil
}

func (s *RatingService) validateSubmit(in SubmitInput) error {
	err := validateStruct(s.validate, in)
	var verr *ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}
	if verr == nil {
		verr = &ValidationError{}
	}
	if fe, ok := s.checkComment(in.Comment); !ok {
		verr.Fields = append(verr.Fields, fe)
	}
	if len(in.Images) > s.opts.MaxImages {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   "images",
			Message: fmt.Sprintf("must contain at most %d images", s.opts.MaxImages),
		})
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (s *RatingService) checkComment(comment OptionalString) (FieldError, bool) {
	if comment.Value == nil || utf8.RuneCountInString(*comment.Value) <= s.opts.CommentMaxLength {
		return FieldError{}, true
	}
	return FieldError{
		Field:   "comment",
		Message: fmt.Sprintf("must be at most %d characters", s.opts.CommentMaxLength),
	}, false
}

// normalizeComment trims surrounding whitespace; a blank comment becomes null.
// Presence is preserved.
func normalizeComment(c OptionalString) OptionalString {
	if c.Value == nil {
		return c
	}
	trimmed := strings.TrimSpace(*c.Value)
	if trimmed == "" {
		return OptionalString{Set: c.Set}
	}
	return OptionalString{Set: c.Set, Value: &trimmed}
}

// ListForProduct returns a product's ratings, newest first. It is public.
func (s *RatingService) ListForProduct(ctx context.Context, actor domain.Actor, productID string) ([]domain.Rating, error) {
	if err := policy.Decide(actor, policy.ViewProductRatings, "").Err(); err != nil {
		return nil, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, invalidField("productId", "is required")
	}
	ratings, err := s.repo.Ratings.ListByProduct(ctx, productID)
	if err != nil {
		return nil, mapRepoError("list ratings", err)
	}
	return ratings, nil
}

// Average returns the unrounded mean and count of a product's ratings.
func (s *RatingService) Average(ctx context.Context, productID string) (domain.RatingAggregate, error) {
	agg, err := s.repo.Ratings.ComputeAverage(ctx, productID)
	if err != nil {
		return domain.RatingAggregate{}, mapRepoError("compute average", err)
	}
	return agg, nil
}

// AdminList returns ratings across all products for moderation.
func (s *RatingService) AdminList(ctx context.Context, actor domain.Actor, in AdminListInput) (repository.RatingPage, error) {
	if err := policy.Decide(actor, policy.AdminListRatings, "").Err(); err != nil {
		return repository.RatingPage{}, fmt.Errorf("admin list: %w", err)
	}
	if err := validateStruct(s.validate, in); err != nil {
		return repository.RatingPage{}, err
	}
	cursor, err := repository.DecodeCursor(in.Cursor)
	if err != nil {
		return repository.RatingPage{}, invalidField("cursor", "is malformed")
	}
	page, err := s.repo.Ratings.ListAll(ctx, repository.RatingListFilter{Limit: in.Limit, Cursor: cursor})
	if err != nil {
		return repository.RatingPage{}, mapRepoError("admin list", err)
	}
	return page, nil
}

// AdminGet returns any rating by id.
func (s *RatingService) AdminGet(ctx context.Context, actor domain.Actor, id string) (domain.Rating, error) {
	if err := policy.Decide(actor, policy.AdminListRatings, "").Err(); err != nil {
		return domain.Rating{}, fmt.Errorf("admin get: %w", err)
	}
	rating, err := s.repo.Ratings.Get(ctx, id)
	if err != nil {
		return domain.Rating{}, mapRepoError("admin get", err)
	}
	return rating, nil
}

// AuthorizeAdminUpdate reports whether actor may edit arbitrary ratings.
func (s *RatingService) AuthorizeAdminUpdate(actor domain.Actor) error {
	if err := policy.Decide(actor, policy.AdminUpdateAnyRating, "").Err(); err != nil {
		return fmt.Errorf("admin update: %w", err)
	}
	return nil
}

// AdminUpdate overwrites the value of any rating. The comment changes only
// when present in the input. Images are untouched.
func (s *RatingService) AdminUpdate(ctx context.Context, actor domain.Actor, id string, in AdminUpdateInput) (domain.Rating, error) {
	if err := s.AuthorizeAdminUpdate(actor); err != nil {
		return domain.Rating{}, err
	}

	in.Comment = normalizeComment(in.Comment)
	err := validateStruct(s.validate, in)
	var verr *ValidationError
	if err != nil && !errors.As(err, &verr) {
		return domain.Rating{}, err
	}
	if fe, ok := s.checkComment(in.Comment); !ok {
		if verr == nil {
			verr = &ValidationError{}
		}
		verr.Fields = append(verr.Fields, fe)
	}
	if verr != nil {
		return domain.Rating{}, verr
	}

	var rating domain.Rating
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		params := repository.RatingUpdateParams{Value: in.Value, Comment: in.Comment.Value, SetComment: in.Comment.Set}
		if _, err := tx.Ratings.Update(ctx, id, params); err != nil {
			return err
		}
		var err error
		rating, err = tx.Ratings.Get(ctx, id)
		return err
	})
	if err != nil {
		return domain.Rating{}, mapRepoError("admin update", err)
	}
	s.logger.Info("rating updated by admin",
		zap.String("rating_id", id),
		zap.String("admin_id", actor.ID),
		zap.Int("value", in.Value),
	)
	return rating, nil
}

// AdminDelete removes any rating together with its images. Deleting the same
// id twice yields ErrNotFound.
func (s *RatingService) AdminDelete(ctx context.Context, actor domain.Actor, id string) error {
	if err := policy.Decide(actor, policy.AdminDeleteAnyRating, "").Err(); err != nil {
		return fmt.Errorf("admin delete: %w", err)
	}
	if err := s.repo.Ratings.Delete(ctx, id); err != nil {
		return mapRepoError("admin delete", err)
	}
	s.logger.Info("rating deleted by admin", zap.String("rating_id", id), zap.String("admin_id", actor.ID))
	return nil
}
