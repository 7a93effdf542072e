package repository

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/infra/db"
	repo "shoestore/internal/repository"
	"shoestore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// パッケージ内で1つのPostgresコンテナを共有する
var (
	testDB     *gorm.DB
	testDBSkip string
)

func TestMain(m *testing.M) {
	flag.Parse()
	code := func() int {
		if testing.Short() {
			testDBSkip = "short mode"
			return m.Run()
		}

		ctx := context.Background()
		ctr, err := startPostgres(ctx)
		if err != nil {
			testDBSkip = "postgres container unavailable: " + err.Error()
			return m.Run()
		}
		defer func() { _ = testcontainers.TerminateContainer(ctr) }()

		dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testDBSkip = err.Error()
			return m.Run()
		}
		gdb, err := db.Open(dsn, 5, gormlogger.Silent, zap.NewNop())
		if err != nil {
			testDBSkip = err.Error()
			return m.Run()
		}
		if err := db.Migrate(gdb); err != nil {
			testDBSkip = "migrate: " + err.Error()
			return m.Run()
		}
		if err := db.Seed(gdb); err != nil {
			testDBSkip = "seed: " + err.Error()
			return m.Run()
		}
		testDB = gdb
		return m.Run()
	}()
	os.Exit(code)
}

// Dockerが無い環境ではプロバイダ取得でpanicすることがある
func startPostgres(ctx context.Context) (ctr *postgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker provider: %v", r)
		}
	}()
	return postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("shoestore"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
}

// テストごとにテーブルを空にする（参照データは残す）
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip(testDBSkip)
	}
	require.NoError(t, testDB.Exec(`TRUNCATE users, password_reset_tokens, products, product_sizes, addresses,
		payment_methods, carts, cart_items, vouchers, orders, order_items, voucher_redemptions,
		payment_transactions, inventory_adjustments, audit_logs RESTART IDENTITY CASCADE`).Error)
	return testDB
}

func sizeIDOf(t *testing.T, gdb *gorm.DB, value string) int64 {
	t.Helper()
	var s model.Size
	require.NoError(t, gdb.Where("size_value = ?", value).First(&s).Error)
	return s.ID
}

func seedProduct(t *testing.T, gdb *gorm.DB, name string, price int64, stock map[int64]int64) model.Product {
	t.Helper()
	p, err := NewProductGormRepository(gdb).Create(context.Background(), model.Product{Name: name, Price: price})
	require.NoError(t, err)
	rows := make([]model.ProductSize, 0, len(stock))
	for sizeID, n := range stock {
		rows = append(rows, model.ProductSize{ProductID: p.ID, SizeID: sizeID, Stock: n})
	}
	require.NoError(t, NewProductGormRepository(gdb).ReplaceSizes(context.Background(), p.ID, rows))
	return p
}

func TestInventory_DecreaseStockIfEnough(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	s40 := sizeIDOf(t, gdb, "40")
	p := seedProduct(t, gdb, "Runner", 100000, map[int64]int64{s40: 2})
	inv := NewInventoryGormRepository(gdb)

	ok, err := inv.DecreaseStockIfEnough(ctx, p.ID, s40, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = inv.DecreaseStockIfEnough(ctx, p.ID, s40, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	stock, err := inv.GetStockForUpdate(ctx, p.ID, s40)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)

	require.NoError(t, inv.IncreaseStock(ctx, p.ID, s40, 3))
	assert.ErrorIs(t, inv.IncreaseStock(ctx, p.ID, sizeIDOf(t, gdb, "41"), 1), repo.ErrNotFound)
}

// 同時に最後の1足を取り合っても片方だけ成功する
func TestInventory_ConcurrentDecrease(t *testing.T) {
	gdb := setupDB(t)
	s40 := sizeIDOf(t, gdb, "40")
	p := seedProduct(t, gdb, "Last Pair", 100000, map[int64]int64{s40: 1})
	tm := NewTxManagerGorm(gdb)

	var wg sync.WaitGroup
	results := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
				ok, err := r.Inventory().DecreaseStockIfEnough(context.Background(), p.ID, s40, 1)
				if err != nil {
					return err
				}
				results <- ok
				return nil
			})
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for ok := range results {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	s40 := sizeIDOf(t, gdb, "40")
	p := seedProduct(t, gdb, "Rollback", 100000, map[int64]int64{s40: 5})

	boom := errors.New("boom")
	err := NewTxManagerGorm(gdb).WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, s40, 3); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stock, err := NewInventoryGormRepository(gdb).GetStockForUpdate(ctx, p.ID, s40)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stock)
}

func TestCart_MergeLinesAddsQuantities(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	s40, s41 := sizeIDOf(t, gdb, "40"), sizeIDOf(t, gdb, "41")
	p := seedProduct(t, gdb, "Runner", 100000, map[int64]int64{s40: 10, s41: 10})
	carts := NewCartGormRepository(gdb)

	cart, err := carts.GetOrCreateActiveByUserID(ctx, 7)
	require.NoError(t, err)
	again, err := carts.GetOrCreateActiveByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	require.NoError(t, carts.UpsertLine(ctx, cart.ID, model.CartLine{ProductID: p.ID, SizeID: s40, Quantity: 1}))
	require.NoError(t, carts.MergeLines(ctx, cart.ID, []model.CartLine{
		{ProductID: p.ID, SizeID: s40, Quantity: 2},
		{ProductID: p.ID, SizeID: s41, Quantity: 1},
	}))

	items, err := carts.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].Quantity)
	assert.Equal(t, int64(1), items[1].Quantity)

	owned, err := carts.IsOwnedByUser(ctx, items[0].ID, 7)
	require.NoError(t, err)
	assert.True(t, owned)
	owned, err = carts.IsOwnedByUser(ctx, items[0].ID, 8)
	require.NoError(t, err)
	assert.False(t, owned)

	require.NoError(t, carts.DeleteByIDs(ctx, cart.ID, []int64{items[0].ID}))
	items, err = carts.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestVoucher_UsageLimitAndRedemption(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	vouchers := NewVoucherGormRepository(gdb)

	v, err := vouchers.Create(ctx, model.Voucher{Code: "once", Type: model.VoucherTypeFixed, Value: 1000, UsageLimit: 1})
	require.NoError(t, err)
	assert.Equal(t, "ONCE", v.Code)

	_, err = vouchers.Create(ctx, model.Voucher{Code: "ONCE", Type: model.VoucherTypeFixed, Value: 1})
	assert.ErrorIs(t, err, repo.ErrConflict)

	ok, err := vouchers.IncrementUsedIfAvailable(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = vouchers.IncrementUsedIfAvailable(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, vouchers.CreateRedemption(ctx, model.VoucherRedemption{VoucherID: v.ID, UserID: 7, OrderID: 1}))
	err = vouchers.CreateRedemption(ctx, model.VoucherRedemption{VoucherID: v.ID, UserID: 7, OrderID: 2})
	assert.ErrorIs(t, err, repo.ErrConflict)

	used, err := vouchers.HasRedeemed(ctx, v.ID, 7)
	require.NoError(t, err)
	assert.True(t, used)

	found, err := vouchers.FindByCode(ctx, "once")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.UsedCount)
}

func TestOrder_IdempotencyKeyIsPerUser(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	orders := NewOrderGormRepository(gdb)
	key := "checkout-1"

	newOrder := func(userID int64) model.Order {
		return model.Order{
			UserID: userID, Status: model.OrderStatusPending,
			Subtotal: 100, TotalAmount: 100,
			PaymentMethodID: 1, PaymentType: model.PaymentTypeCOD,
			AddressID: 1, ShippingName: "A", ShippingPhone: "0900000000", ShippingAddress: "HCMC",
			IdempotencyKey: &key,
		}
	}

	id, err := orders.Create(ctx, newOrder(7))
	require.NoError(t, err)
	_, err = orders.Create(ctx, newOrder(7))
	assert.ErrorIs(t, err, repo.ErrConflict)
	_, err = orders.Create(ctx, newOrder(8))
	require.NoError(t, err)

	o, found, err := orders.FindByIdempotencyKey(ctx, 7, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, o.ID)

	_, found, err = orders.FindByIdempotencyKey(ctx, 9, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPaymentTransaction_CompleteOnce(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	payments := NewPaymentTransactionGormRepository(gdb)

	_, err := payments.Create(ctx, model.PaymentTransaction{
		OrderID: 1, Provider: "momo", RequestID: "req-1", Amount: 100, Status: model.PaymentTxPending,
	})
	require.NoError(t, err)

	res := repo.PaymentResult{Status: model.PaymentTxSuccess, ProviderTransID: "555"}
	ok, err := payments.CompleteIfPending(ctx, "req-1", res)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = payments.CompleteIfPending(ctx, "req-1", repo.PaymentResult{Status: model.PaymentTxFailed})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := payments.FindByRequestID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentTxSuccess, got.Status)
	assert.Equal(t, "555", got.ProviderTransID)
}

func TestPasswordReset_ConsumeAndCleanup(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	resets := NewPasswordResetGormRepository(gdb)
	now := time.Now().UTC()

	require.NoError(t, resets.Create(ctx, model.PasswordResetToken{UserID: 1, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, resets.Create(ctx, model.PasswordResetToken{UserID: 1, TokenHash: "dead", ExpiresAt: now.Add(-time.Minute)}))

	_, err := resets.FindValidByHash(ctx, "dead", now)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	tok, err := resets.FindValidByHash(ctx, "live", now)
	require.NoError(t, err)
	ok, err := resets.MarkConsumed(ctx, tok.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = resets.MarkConsumed(ctx, tok.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	//期限切れは消える、使用済みは保持期間内なら残る
	n, err := resets.DeleteStale(ctx, now, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = resets.DeleteStale(ctx, now, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUser_IncrementTokenVersion(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	users := NewUserGormRepository(gdb)

	u := &model.User{Email: "a@example.com", PasswordHash: "x", Role: model.RoleCustomer, IsActive: true}
	require.NoError(t, users.Create(ctx, u))
	assert.ErrorIs(t, users.Create(ctx, &model.User{Email: "a@example.com", PasswordHash: "y", Role: model.RoleCustomer}), repo.ErrConflict)

	require.NoError(t, users.IncrementTokenVersion(ctx, u.ID))
	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TokenVersion)

	assert.ErrorIs(t, users.IncrementTokenVersion(ctx, 9999), repo.ErrNotFound)
}

func createProduct(t *testing.T, gdb *gorm.DB, p model.Product) model.Product {
	t.Helper()
	created, err := NewProductGormRepository(gdb).Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func categoryIDOf(t *testing.T, gdb *gorm.DB, name string) int64 {
	t.Helper()
	var c model.Category
	require.NoError(t, gdb.Where("name = ?", name).First(&c).Error)
	return c.ID
}

func strPtr(s string) *string { return &s }

func searchNames(items []repo.ProductSearchItem) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

// 商品名・品番・カテゴリ名のどれかに部分一致
func TestProduct_SearchMatchesNameCodeAndCategory(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	running := categoryIDOf(t, gdb, "Running")

	createProduct(t, gdb, model.Product{Name: "Air Runner", Code: strPtr("AR-1"), Price: 300})
	createProduct(t, gdb, model.Product{Name: "Trail Boot", Code: strPtr("TB-9"), Price: 100, CategoryID: &running})
	createProduct(t, gdb, model.Product{Name: "Loafer", Code: strPtr("RUN-LF"), Price: 200})
	createProduct(t, gdb, model.Product{Name: "Sandal X", Code: strPtr("SX-2"), Price: 50})
	products := NewProductGormRepository(gdb)

	items, total, err := products.Search(ctx, repo.ProductSearchQuery{Query: "run", Page: 1, Limit: 10, Sort: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Trail Boot", "Loafer", "Air Runner"}, searchNames(items))
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "Running", *items[0].Category)
	assert.Nil(t, items[1].Category)

	items, _, err = products.Search(ctx, repo.ProductSearchQuery{Query: "RUN", Page: 1, Limit: 10, Sort: "price_desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Air Runner", "Loafer", "Trail Boot"}, searchNames(items))

	//既定は新しい順
	items, _, err = products.Search(ctx, repo.ProductSearchQuery{Query: "run", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Loafer", "Trail Boot", "Air Runner"}, searchNames(items))

	//2ページ目（LIMIT/OFFSET）でも total は全件数
	items, total, err = products.Search(ctx, repo.ProductSearchQuery{Query: "run", Page: 2, Limit: 2, Sort: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Air Runner"}, searchNames(items))

	items, total, err = products.Search(ctx, repo.ProductSearchQuery{Query: "nothing-here", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestProduct_AutocompleteReturnsAtMostEight(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		createProduct(t, gdb, model.Product{Name: fmt.Sprintf("Court %d", i), Price: 100})
	}
	createProduct(t, gdb, model.Product{Name: "Sandal", Price: 100})

	uc := usecase.NewProductUsecase(NewTxManagerGorm(gdb), NewProductGormRepository(gdb), NewReferenceGormRepository(gdb), nil)
	got, err := uc.Autocomplete(ctx, "court")
	require.NoError(t, err)
	require.Len(t, got, 8)
	assert.Equal(t, "Court 0", got[0].Name)
	assert.Equal(t, "Court 7", got[7].Name)

	got, err = NewProductGormRepository(gdb).Autocomplete(ctx, "zzz", 8)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProduct_ReplaceSizesDropsOldRows(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	s40, s41, s42 := sizeIDOf(t, gdb, "40"), sizeIDOf(t, gdb, "41"), sizeIDOf(t, gdb, "42")
	p := seedProduct(t, gdb, "Runner", 100000, map[int64]int64{s40: 1, s41: 2})
	products := NewProductGormRepository(gdb)

	require.NoError(t, products.ReplaceSizes(ctx, p.ID, []model.ProductSize{{SizeID: s42, Stock: 5}}))
	rows, err := products.ListSizeRows(ctx, []int64{p.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, p.ID, rows[0].ProductID)
	assert.Equal(t, s42, rows[0].SizeID)
	assert.Equal(t, int64(5), rows[0].Stock)

	require.NoError(t, products.ReplaceSizes(ctx, p.ID, nil))
	rows, err = products.ListSizeRows(ctx, []int64{p.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestProduct_CreateUnknownCategoryIsInvalidRef(t *testing.T) {
	gdb := setupDB(t)
	missing := int64(9999)
	_, err := NewProductGormRepository(gdb).Create(context.Background(), model.Product{Name: "Ghost", Price: 1, CategoryID: &missing})
	assert.ErrorIs(t, err, repo.ErrInvalidRef)
}

// 不正な参照で失敗したら商品行も残らない
func TestProductUsecase_CreateRejectsUnknownRefsWithoutWriting(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	uc := usecase.NewProductUsecase(NewTxManagerGorm(gdb), NewProductGormRepository(gdb), NewReferenceGormRepository(gdb), nil)
	price := int64(100000)
	missingCategory := int64(9999)

	cases := []usecase.ProductCreateInput{
		{Name: "Ghost Size", Price: &price, Sizes: []usecase.SizeStockInput{{SizeID: sizeIDOf(t, gdb, "40"), Stock: 1}, {SizeID: 99999, Stock: 1}}},
		{Name: "Ghost Category", Price: &price, CategoryID: &missingCategory},
	}
	for _, in := range cases {
		_, err := uc.Create(ctx, 1, in)
		var he *usecase.HTTPError
		require.ErrorAs(t, err, &he, in.Name)
		assert.Equal(t, 400, he.Status, in.Name)
	}

	for _, table := range []string{"products", "product_sizes", "audit_logs"} {
		var n int64
		require.NoError(t, gdb.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}
}

func TestOrder_ListAdminFilters(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	alice := model.User{Email: "alice@example.com", PasswordHash: "x", Role: model.RoleCustomer}
	bob := model.User{Email: "bob@example.com", PasswordHash: "x", Role: model.RoleCustomer}
	require.NoError(t, gdb.Create(&alice).Error)
	require.NoError(t, gdb.Create(&bob).Error)

	orders := NewOrderGormRepository(gdb)
	place := func(userID int64, status model.OrderStatus, name string) int64 {
		id, err := orders.Create(ctx, model.Order{
			UserID: userID, Status: status,
			Subtotal: 100, TotalAmount: 100,
			PaymentMethodID: 7, PaymentType: model.PaymentTypeCOD,
			AddressID: 7, ShippingName: name, ShippingPhone: "0900000000", ShippingAddress: "HCMC",
		})
		require.NoError(t, err)
		return id
	}
	o1 := place(alice.ID, model.OrderStatusPending, "Nguyen Van An")
	o2 := place(bob.ID, model.OrderStatusConfirmed, "Tran Thi Binh")
	o3 := place(alice.ID, model.OrderStatusConfirmed, "Le Van Cuong")

	ids := func(rows []repo.OrderListRow) []int64 {
		out := make([]int64, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.ID)
		}
		return out
	}

	rows, total, err := orders.ListAdmin(ctx, repo.AdminOrderListFilter{Status: string(model.OrderStatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []int64{o3, o2}, ids(rows))

	rows, total, err = orders.ListAdmin(ctx, repo.AdminOrderListFilter{Q: "tran"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, o2, rows[0].ID)
	assert.Equal(t, "bob@example.com", rows[0].CustomerEmail)

	rows, _, err = orders.ListAdmin(ctx, repo.AdminOrderListFilter{Q: "ALICE@"})
	require.NoError(t, err)
	assert.Equal(t, []int64{o3, o1}, ids(rows))

	rows, total, err = orders.ListAdmin(ctx, repo.AdminOrderListFilter{Q: fmt.Sprintf("#%d", o1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []int64{o1}, ids(rows))

	rows, total, err = orders.ListAdmin(ctx, repo.AdminOrderListFilter{UserID: &alice.ID, Status: string(model.OrderStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []int64{o1}, ids(rows))

	rows, total, err = orders.ListAdmin(ctx, repo.AdminOrderListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []int64{o1}, ids(rows))
}

func TestAddress_DefaultSwitchAndOwnership(t *testing.T) {
	gdb := setupDB(t)
	ctx := context.Background()
	owner := model.User{Email: "owner@example.com", PasswordHash: "x", Role: model.RoleCustomer}
	other := model.User{Email: "other@example.com", PasswordHash: "x", Role: model.RoleCustomer}
	require.NoError(t, gdb.Create(&owner).Error)
	require.NoError(t, gdb.Create(&other).Error)
	addresses := NewAddressGormRepository(gdb)

	home, err := addresses.Create(ctx, model.Address{UserID: owner.ID, RecipientName: "A", Phone: "0900000000", Line: "1 Le Loi", City: "HCMC", IsDefault: true})
	require.NoError(t, err)
	office, err := addresses.Create(ctx, model.Address{UserID: owner.ID, RecipientName: "A", Phone: "0900000000", Line: "2 Hai Ba Trung", City: "HCMC"})
	require.NoError(t, err)

	require.NoError(t, addresses.SetDefault(ctx, owner.ID, office.ID))
	list, err := addresses.ListByUserID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, office.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	//他人の住所は default にできず、既存の default も変わらない
	assert.ErrorIs(t, addresses.SetDefault(ctx, other.ID, home.ID), repo.ErrNotFound)
	got, err := addresses.FindByID(ctx, office.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	owned, err := addresses.IsOwnedByUser(ctx, home.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, owned)

	office.City = "Da Nang"
	office.IsDefault = false
	require.NoError(t, addresses.Update(ctx, office))
	got, err = addresses.FindByID(ctx, office.ID)
	require.NoError(t, err)
	assert.Equal(t, "Da Nang", got.City)
	assert.True(t, got.IsDefault)

	require.NoError(t, addresses.Delete(ctx, home.ID))
	assert.ErrorIs(t, addresses.Delete(ctx, home.ID), repo.ErrNotFound)
	assert.ErrorIs(t, addresses.Update(ctx, model.Address{ID: home.ID, City: "X"}), repo.ErrNotFound)
	_, err = addresses.FindByID(ctx, home.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
