package cartControllers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{},
		&models.Cart{}, &models.CartItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, title string, price float64) models.Product {
	t.Helper()
	p := models.Product{Title: title, Price: price, Description: "desc " + title, ImageKey: title + ".png", SellerID: "seller-1"}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestAddSameProductIncrementsSingleLine(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Book", 10)

	for i := 0; i < 3; i++ {
		require.NoError(t, Add(db, "user-1", product.ID))
	}

	var items []models.CartItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, product.ID, items[0].ProductID)
	require.Equal(t, 3, items[0].Quantity)
}

func TestAddUnknownProductIsValidationFault(t *testing.T) {
	db := newTestDB(t)

	err := Add(db, "user-1", 999)
	require.ErrorIs(t, err, ErrProductNotFound)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRemoveAbsentLineIsNoop(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Book", 10)
	require.NoError(t, Add(db, "user-1", product.ID))

	require.NoError(t, Remove(db, "user-1", 12345))

	items, err := Resolve(db, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity)
}

func TestRemoveDropsLine(t *testing.T) {
	db := newTestDB(t)
	a := seedProduct(t, db, "A", 10)
	b := seedProduct(t, db, "B", 5)
	require.NoError(t, Add(db, "user-1", a.ID))
	require.NoError(t, Add(db, "user-1", b.ID))

	require.NoError(t, Remove(db, "user-1", a.ID))

	items, err := Resolve(db, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, b.ID, items[0].Product.ID)
}

func TestResolvePrunesDanglingLinesAndPersists(t *testing.T) {
	db := newTestDB(t)
	a := seedProduct(t, db, "A", 10)
	b := seedProduct(t, db, "B", 5)
	require.NoError(t, Add(db, "user-1", a.ID))
	require.NoError(t, Add(db, "user-1", b.ID))

	require.NoError(t, db.Delete(&models.Product{}, b.ID).Error)

	items, err := Resolve(db, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, a.ID, items[0].Product.ID)

	// The prune must be written back, not just filtered from the view.
	var rows []models.CartItem
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, a.ID, rows[0].ProductID)
}

func TestClearEmptiesCart(t *testing.T) {
	db := newTestDB(t)
	a := seedProduct(t, db, "A", 10)
	b := seedProduct(t, db, "B", 5)
	require.NoError(t, Add(db, "user-1", a.ID))
	require.NoError(t, Add(db, "user-1", b.ID))

	require.NoError(t, Clear(db, "user-1"))

	items, err := Resolve(db, "user-1")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestTotal(t *testing.T) {
	items := []ResolvedItem{
		{Product: models.Product{Price: 10}, Quantity: 2},
		{Product: models.Product{Price: 5}, Quantity: 1},
	}
	require.Equal(t, 25.0, Total(items))
}
