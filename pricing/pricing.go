package pricing

import (
	"errors"
	"fmt"
	"time"

	"water-delivery-api/models"

	"gorm.io/gorm"
)

// PriceTable holds the fixed unit price per bottle tier
var PriceTable = map[models.BottleSize]float64{
	models.Bottle5L:  50,
	models.Bottle10L: 90,
	models.Bottle20L: 140,
}

// DeliveryCharge is the flat per-order delivery fee
const DeliveryCharge = 50.0

// Line is one (bottle size, quantity) entry of an order request
type Line struct {
	Size     models.BottleSize
	Quantity int
}

// Subtotal computes Σ(unit price × quantity) over the given lines
func Subtotal(lines []Line) (float64, error) {
	if len(lines) == 0 {
		return 0, errors.New("order must contain at least one item")
	}
	var sum float64
	for _, l := range lines {
		price, ok := PriceTable[l.Size]
		if !ok {
			return 0, fmt.Errorf("unknown bottle size: %s", l.Size)
		}
		if l.Quantity < 1 {
			return 0, fmt.Errorf("quantity must be at least 1 for size %s", l.Size)
		}
		sum += price * float64(l.Quantity)
	}
	return sum, nil
}

// ValidatePromo checks whether a promo code may be applied to an order whose
// pre-discount total (subtotal + delivery charge) is the given amount.
func ValidatePromo(p *models.PromoCode, preDiscountTotal float64, now time.Time) error {
	if !p.IsActive {
		return errors.New("promo code is not active")
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidTo) {
		return errors.New("promo code is outside its validity window")
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return errors.New("promo code usage limit reached")
	}
	if preDiscountTotal < p.MinOrderAmount {
		return fmt.Errorf("order total must be at least %.2f to use this code", p.MinOrderAmount)
	}
	return nil
}

// Discount computes the discount a promo grants on the pre-discount total.
// Fixed-amount codes are clamped to the total so the final price never goes
// negative.
func Discount(p *models.PromoCode, preDiscountTotal float64) float64 {
	switch p.DiscountType {
	case models.DiscountPercent:
		return preDiscountTotal * p.DiscountValue / 100
	case models.DiscountFixed:
		if p.DiscountValue > preDiscountTotal {
			return preDiscountTotal
		}
		return p.DiscountValue
	}
	return 0
}

// ErrPromoUnavailable means the code was deactivated or exhausted between
// validation and redemption.
var ErrPromoUnavailable = errors.New("promo code is no longer available")

// RedeemPromo increments the usage counter with a single conditional update,
// guarded against the cap. Zero rows affected means the code was deactivated
// or exhausted by a concurrent request, and the caller must not apply it.
func RedeemPromo(db *gorm.DB, promoID uint) error {
	res := db.Model(&models.PromoCode{}).
		Where("id = ? AND is_active = ? AND (usage_limit = 0 OR used_count < usage_limit)", promoID, true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPromoUnavailable
	}
	return nil
}
