package social

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/unera/backend/internal/countries"
	"github.com/unera/backend/internal/engagement"
	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/logging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/store"
)

const (
	productViewsCeiling = 1000
	productSoldCeiling  = 50
)

// CreateProduct publishes a marketplace listing sold by the actor.
func (s *Service) CreateProduct(ctx context.Context, actor session.Authenticated, req models.CreateProductRequest) (models.Product, error) {
	_, span := logging.StartSpan(ctx, "social.create_product")
	defer span.End()

	if err := req.Validate(); err != nil {
		return models.Product{}, span.Fail(err)
	}
	if _, ok := countries.MarketplaceCountryByCode(req.Country); !ok {
		return models.Product{}, span.Fail(&models.ValidationError{Field: "country", Message: "is not a marketplace country"})
	}
	if !countries.IsCategory(req.Category) {
		return models.Product{}, span.Fail(&models.ValidationError{Field: "category", Message: "is not a marketplace category"})
	}

	var product models.Product
	err := s.submit(actor.UserID(), "create_product", func() error {
		_, err := s.store.Update(func(st store.State) (store.State, error) {
			if _, err := requireUser(st, actor.UserID()); err != nil {
				return st, err
			}
			id := s.store.NextID()
			product = models.Product{
				ID:            id,
				Title:         req.Title,
				Category:      req.Category,
				Description:   req.Description,
				Country:       req.Country,
				Address:       req.Address,
				MainPrice:     req.MainPrice,
				DiscountPrice: req.DiscountPrice,
				Quantity:      req.Quantity,
				PhoneNumber:   req.PhoneNumber,
				Images:        req.Images,
				SellerID:      actor.UserID(),
				CreatedAt:     s.now(),
				Status:        models.ProductActive,
				ShareID:       uuid.NewString(),
				Views:         engagement.DerivedStat(id, "product-views", productViewsCeiling),
				Sold:          engagement.DerivedStat(id, "product-sold", productSoldCeiling),
				Ratings:       []int{},
				Comments:      []models.Comment{},
			}
			st.Products = store.Prepend(st.Products, product)
			return st, nil
		})
		return err
	})
	if err != nil {
		return models.Product{}, span.Fail(fmt.Errorf("create product: %w", err))
	}
	return product, nil
}

// SetProductStatus changes the lifecycle status of the actor's listing.
func (s *Service) SetProductStatus(ctx context.Context, actor session.Authenticated, productID int64, status models.ProductStatus) (models.Product, error) {
	_, span := logging.StartSpan(ctx, "social.set_product_status")
	defer span.End()

	if !status.Valid() {
		return models.Product{}, span.Fail(&models.ValidationError{Field: "status", Message: "must be active, sold or inactive"})
	}
	product, err := s.updateProduct(productID, func(p models.Product) (models.Product, error) {
		if p.SellerID != actor.UserID() {
			return p, ErrForbidden
		}
		p.Status = status
		return p, nil
	})
	if err != nil {
		return models.Product{}, span.Fail(fmt.Errorf("set product status: %w", err))
	}
	return product, nil
}

// RateProduct records a 1..5 rating of a listing. Sellers cannot rate their own listings.
func (s *Service) RateProduct(ctx context.Context, actor session.Authenticated, productID int64, rating int) (models.Product, error) {
	_, span := logging.StartSpan(ctx, "social.rate_product")
	defer span.End()

	if rating < 1 || rating > 5 {
		return models.Product{}, span.Fail(ErrInvalidRating)
	}
	product, err := s.updateProduct(productID, func(p models.Product) (models.Product, error) {
		if p.SellerID == actor.UserID() {
			return p, ErrForbidden
		}
		p.Ratings = append(append(make([]int, 0, len(p.Ratings)+1), p.Ratings...), rating)
		return p, nil
	})
	if err != nil {
		return models.Product{}, span.Fail(fmt.Errorf("rate product: %w", err))
	}
	return product, nil
}

// CommentOnProduct appends a question or review to a listing and notifies the seller.
func (s *Service) CommentOnProduct(ctx context.Context, actor session.Authenticated, productID int64, text string) (models.Comment, error) {
	ctx, span := logging.StartSpan(ctx, "social.comment_product")
	defer span.End()

	var (
		comment models.Comment
		n       *models.Notification
	)
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		if _, err := requireUser(st, actor.UserID()); err != nil {
			return st, err
		}
		product, ok := store.Find(st.Products, productID, store.ProductKey)
		if !ok {
			return st, ErrProductNotFound
		}
		var err error
		comment, err = engagement.NewComment(s.store.NextID(), actor.UserID(), text, nil, s.now())
		if err != nil {
			return st, err
		}
		product.Comments = engagement.AppendComment(product.Comments, comment)
		st.Products, _ = store.Replace(st.Products, product, store.ProductKey)
		st.Notifications, n = s.notifier.Notify(st.Notifications, notify.Draft{
			RecipientID: product.SellerID,
			SenderID:    actor.UserID(),
			Type:        models.NotificationComment,
			Content:     fmt.Sprintf("commented on your listing %s", product.Title),
		})
		return st, nil
	})
	if err != nil {
		return models.Comment{}, span.Fail(fmt.Errorf("comment on product: %w", err))
	}
	s.publishComment(ctx, "product", productID, comment)
	s.publishNotification(ctx, n)
	return comment, nil
}

// Product looks up a listing with its seller.
func (s *Service) Product(productID int64) (feed.ProductView, error) {
	st := s.store.Snapshot()
	p, ok := store.Find(st.Products, productID, store.ProductKey)
	if !ok {
		return feed.ProductView{}, ErrProductNotFound
	}
	seller, ok := store.Find(st.Users, p.SellerID, store.UserKey)
	if !ok {
		return feed.ProductView{}, ErrProductNotFound
	}
	return feed.ProductView{Product: p, Seller: seller.Public()}, nil
}

// Marketplace lists the listings matching f.
func (s *Service) Marketplace(f feed.Filter) []feed.ProductView {
	st := s.store.Snapshot()
	return feed.Marketplace(st.Products, st.Users, f)
}

func (s *Service) updateProduct(productID int64, fn func(models.Product) (models.Product, error)) (models.Product, error) {
	var updated models.Product
	_, err := s.store.Update(func(st store.State) (store.State, error) {
		p, ok := store.Find(st.Products, productID, store.ProductKey)
		if !ok {
			return st, ErrProductNotFound
		}
		next, err := fn(p)
		if err != nil {
			return st, err
		}
		updated = next
		st.Products, _ = store.Replace(st.Products, next, store.ProductKey)
		return st, nil
	})
	return updated, err
}
