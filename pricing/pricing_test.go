package pricing

import (
	"fmt"
	"testing"
	"time"

	"water-delivery-api/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubtotal(t *testing.T) {
	got, err := Subtotal([]Line{
		{Size: models.Bottle5L, Quantity: 2},
		{Size: models.Bottle10L, Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 190.0, got)

	_, err = Subtotal(nil)
	require.Error(t, err)

	_, err = Subtotal([]Line{{Size: "2L", Quantity: 1}})
	require.Error(t, err)

	_, err = Subtotal([]Line{{Size: models.Bottle5L, Quantity: 0}})
	require.Error(t, err)
}

func promoWindow() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

// The worked example: 5L×2 + 10L×1 = 190, +50 delivery = 240;
// SAVE10 (percent, 10, min 100) discounts 24, final total 216.
func TestWorkedExample(t *testing.T) {
	subtotal, err := Subtotal([]Line{
		{Size: models.Bottle5L, Quantity: 2},
		{Size: models.Bottle10L, Quantity: 1},
	})
	require.NoError(t, err)
	pre := subtotal + DeliveryCharge
	require.Equal(t, 240.0, pre)

	from, to := promoWindow()
	promo := models.PromoCode{
		Code: "SAVE10", DiscountType: models.DiscountPercent, DiscountValue: 10,
		MinOrderAmount: 100, ValidFrom: from, ValidTo: to, IsActive: true,
	}
	require.NoError(t, ValidatePromo(&promo, pre, time.Now()))
	discount := Discount(&promo, pre)
	require.Equal(t, 24.0, discount)
	require.Equal(t, 216.0, pre-discount)
}

func TestDiscountFixedClamped(t *testing.T) {
	from, to := promoWindow()
	promo := models.PromoCode{
		Code: "BIG", DiscountType: models.DiscountFixed, DiscountValue: 500,
		ValidFrom: from, ValidTo: to, IsActive: true,
	}
	// Fixed discount never exceeds the pre-discount total
	require.Equal(t, 240.0, Discount(&promo, 240))

	promo.DiscountValue = 30
	require.Equal(t, 30.0, Discount(&promo, 240))
}

func TestValidatePromo(t *testing.T) {
	from, to := promoWindow()
	base := models.PromoCode{
		Code: "X", DiscountType: models.DiscountPercent, DiscountValue: 10,
		ValidFrom: from, ValidTo: to, IsActive: true,
	}

	p := base
	p.IsActive = false
	require.Error(t, ValidatePromo(&p, 240, time.Now()))

	p = base
	p.ValidTo = time.Now().Add(-time.Minute)
	require.Error(t, ValidatePromo(&p, 240, time.Now()))

	p = base
	p.ValidFrom = time.Now().Add(time.Minute)
	require.Error(t, ValidatePromo(&p, 240, time.Now()))

	p = base
	p.UsageLimit = 3
	p.UsedCount = 3
	require.Error(t, ValidatePromo(&p, 240, time.Now()))

	p = base
	p.MinOrderAmount = 300
	require.Error(t, ValidatePromo(&p, 240, time.Now()))

	require.NoError(t, ValidatePromo(&base, 240, time.Now()))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PromoCode{}))
	return db
}

func TestRedeemPromoGuardsCap(t *testing.T) {
	db := openTestDB(t)
	from, to := promoWindow()
	promo := models.PromoCode{
		Code: "ONCE", DiscountType: models.DiscountFixed, DiscountValue: 10,
		ValidFrom: from, ValidTo: to, IsActive: true, UsageLimit: 1,
	}
	require.NoError(t, db.Create(&promo).Error)

	require.NoError(t, RedeemPromo(db, promo.ID))
	// Cap reached: second redemption must fail and leave the counter alone
	require.ErrorIs(t, RedeemPromo(db, promo.ID), ErrPromoUnavailable)

	var got models.PromoCode
	require.NoError(t, db.First(&got, promo.ID).Error)
	require.Equal(t, 1, got.UsedCount)
}

func TestRedeemPromoUncapped(t *testing.T) {
	db := openTestDB(t)
	from, to := promoWindow()
	promo := models.PromoCode{
		Code: "FREEFLOW", DiscountType: models.DiscountPercent, DiscountValue: 5,
		ValidFrom: from, ValidTo: to, IsActive: true, UsageLimit: 0,
	}
	require.NoError(t, db.Create(&promo).Error)

	for i := 0; i < 5; i++ {
		require.NoError(t, RedeemPromo(db, promo.ID))
	}
	var got models.PromoCode
	require.NoError(t, db.First(&got, promo.ID).Error)
	require.Equal(t, 5, got.UsedCount)
}
