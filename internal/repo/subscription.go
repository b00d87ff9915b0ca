package repo

import (
	"context"

	"github.com/Skotchmaster/fashion_shop/internal/models"
)

func (r *GormRepo) GetSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&s).Error; err != nil {
		return nil, translate(err, "subscription")
	}
	return &s, nil
}

func (r *GormRepo) CreateSubscription(ctx context.Context, s *models.Subscription) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error, "subscription "+s.Email)
}

func (r *GormRepo) SaveSubscription(ctx context.Context, s *models.Subscription) error {
	return r.DB.WithContext(ctx).Model(s).
		Select("is_active", "source", "updated_at").
		Updates(s).Error
}

func (r *GormRepo) ListActiveSubscriptions(ctx context.Context, offset, limit int) (int64, []models.Subscription, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Subscription{}).
		Where("is_active = ?", true).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Subscription, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateContactMessage(ctx context.Context, m *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(m).Error
}
