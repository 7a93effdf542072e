package usecase_test

import (
	"context"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/infra/payment"
	"shoestore/internal/infra/queue"
	repo "shoestore/internal/repository"
	"shoestore/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
type txManagerMock struct {
	mock.Mock
	repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.repos)
}

type txReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	inventory  repo.InventoryRepository
	products   repo.ProductRepository
	refs       repo.ReferenceRepository
	vouchers   repo.VoucherRepository
	payments   repo.PaymentTransactionRepository
	audits     repo.AuditLogRepository
	users      repo.UserRepository
}

func (r *txReposMock) Orders() repo.OrderRepository                { return r.orders }
func (r *txReposMock) OrderItems() repo.OrderItemRepository        { return r.orderItems }
func (r *txReposMock) Carts() repo.CartRepository                  { return r.carts }
func (r *txReposMock) CartItems() repo.CartItemRepository          { return r.cartItems }
func (r *txReposMock) Inventory() repo.InventoryRepository         { return r.inventory }
func (r *txReposMock) Products() repo.ProductRepository            { return r.products }
func (r *txReposMock) References() repo.ReferenceRepository        { return r.refs }
func (r *txReposMock) Vouchers() repo.VoucherRepository            { return r.vouchers }
func (r *txReposMock) Payments() repo.PaymentTransactionRepository { return r.payments }
func (r *txReposMock) AuditLogs() repo.AuditLogRepository          { return r.audits }
func (r *txReposMock) Users() repo.UserRepository                  { return r.users }

// =====================
// Orders
// =====================

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

func (m *orderRepoMock) Delete(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *orderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *orderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]repo.OrderListRow, int64, error) {
	args := m.Called(ctx, f)
	rows, _ := args.Get(0).([]repo.OrderListRow)
	return rows, args.Get(1).(int64), args.Error(2)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *orderItemRepoMock) ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *orderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

// =====================
// Cart
// =====================

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) Clear(ctx context.Context, cartID int64) error {
	return m.Called(ctx, cartID).Error(0)
}

type cartItemRepoMock struct{ mock.Mock }

func (m *cartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *cartItemRepoMock) UpsertLine(ctx context.Context, cartID int64, line model.CartLine) error {
	return m.Called(ctx, cartID, line).Error(0)
}

func (m *cartItemRepoMock) MergeLines(ctx context.Context, cartID int64, lines []model.CartLine) error {
	return m.Called(ctx, cartID, lines).Error(0)
}

func (m *cartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	return m.Called(ctx, cartItemID, qty).Error(0)
}

func (m *cartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	return m.Called(ctx, cartItemID).Error(0)
}

func (m *cartItemRepoMock) DeleteByIDs(ctx context.Context, cartID int64, ids []int64) error {
	return m.Called(ctx, cartID, ids).Error(0)
}

func (m *cartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *cartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

// =====================
// Catalog / Inventory
// =====================

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
}

func (m *productRepoMock) Search(ctx context.Context, q repo.ProductSearchQuery) ([]repo.ProductSearchItem, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]repo.ProductSearchItem)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) Autocomplete(ctx context.Context, keyword string, limit int) ([]repo.ProductSuggestion, error) {
	args := m.Called(ctx, keyword, limit)
	items, _ := args.Get(0).([]repo.ProductSuggestion)
	return items, args.Error(1)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) ListByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *productRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *productRepoMock) ListSizes(ctx context.Context, productID int64) ([]model.SizeStock, error) {
	args := m.Called(ctx, productID)
	rows, _ := args.Get(0).([]model.SizeStock)
	return rows, args.Error(1)
}

func (m *productRepoMock) UpsertSizes(ctx context.Context, productID int64, sizes []model.ProductSize) error {
	return m.Called(ctx, productID, sizes).Error(0)
}

func (m *productRepoMock) ReplaceSizes(ctx context.Context, productID int64, sizes []model.ProductSize) error {
	return m.Called(ctx, productID, sizes).Error(0)
}

func (m *productRepoMock) ListSizeRows(ctx context.Context, productIDs []int64) ([]model.ProductSize, error) {
	args := m.Called(ctx, productIDs)
	rows, _ := args.Get(0).([]model.ProductSize)
	return rows, args.Error(1)
}

type referenceRepoMock struct{ mock.Mock }

func (m *referenceRepoMock) ListSizes(ctx context.Context) ([]model.Size, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Size)
	return list, args.Error(1)
}

func (m *referenceRepoMock) ExistingSizeIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).([]int64)
	return out, args.Error(1)
}

func (m *referenceRepoMock) FindSizesByIDs(ctx context.Context, ids []int64) ([]model.Size, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]model.Size)
	return list, args.Error(1)
}

func (m *referenceRepoMock) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Category)
	return list, args.Error(1)
}

func (m *referenceRepoMock) CategoryExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type inventoryRepoMock struct{ mock.Mock }

func (m *inventoryRepoMock) GetStockForUpdate(ctx context.Context, productID, sizeID int64) (int64, error) {
	args := m.Called(ctx, productID, sizeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *inventoryRepoMock) SetStock(ctx context.Context, productID, sizeID int64, newStock int64) error {
	return m.Called(ctx, productID, sizeID, newStock).Error(0)
}

func (m *inventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID, sizeID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, sizeID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *inventoryRepoMock) IncreaseStock(ctx context.Context, productID, sizeID int64, qty int64) error {
	return m.Called(ctx, productID, sizeID, qty).Error(0)
}

func (m *inventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	return m.Called(ctx, adjustment).Error(0)
}

// =====================
// Vouchers / Payments / Audit
// =====================

type voucherRepoMock struct{ mock.Mock }

func (m *voucherRepoMock) List(ctx context.Context) ([]model.Voucher, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Voucher)
	return list, args.Error(1)
}

func (m *voucherRepoMock) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *voucherRepoMock) FindByCodeForUpdate(ctx context.Context, code string) (model.Voucher, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *voucherRepoMock) Create(ctx context.Context, v model.Voucher) (model.Voucher, error) {
	args := m.Called(ctx, v)
	created, _ := args.Get(0).(model.Voucher)
	return created, args.Error(1)
}

func (m *voucherRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *voucherRepoMock) IncrementUsedIfAvailable(ctx context.Context, voucherID int64) (bool, error) {
	args := m.Called(ctx, voucherID)
	return args.Bool(0), args.Error(1)
}

func (m *voucherRepoMock) HasRedeemed(ctx context.Context, voucherID, userID int64) (bool, error) {
	args := m.Called(ctx, voucherID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *voucherRepoMock) RedeemedVoucherIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *voucherRepoMock) CreateRedemption(ctx context.Context, r model.VoucherRedemption) error {
	return m.Called(ctx, r).Error(0)
}

type paymentTxRepoMock struct{ mock.Mock }

func (m *paymentTxRepoMock) Create(ctx context.Context, t model.PaymentTransaction) (model.PaymentTransaction, error) {
	args := m.Called(ctx, t)
	created, _ := args.Get(0).(model.PaymentTransaction)
	return created, args.Error(1)
}

func (m *paymentTxRepoMock) FindByRequestID(ctx context.Context, requestID string) (model.PaymentTransaction, error) {
	args := m.Called(ctx, requestID)
	t, _ := args.Get(0).(model.PaymentTransaction)
	return t, args.Error(1)
}

func (m *paymentTxRepoMock) CompleteIfPending(ctx context.Context, requestID string, res repo.PaymentResult) (bool, error) {
	args := m.Called(ctx, requestID, res)
	return args.Bool(0), args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]model.AuditLog)
	return list, args.Get(1).(int64), args.Error(2)
}

// =====================
// Users / Addresses / Payment methods / Resets
// =====================

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *userRepoMock) List(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.User)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *userRepoMock) Delete(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type addressRepoMock struct{ mock.Mock }

func (m *addressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *addressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *addressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *addressRepoMock) Update(ctx context.Context, address model.Address) error {
	return m.Called(ctx, address).Error(0)
}

func (m *addressRepoMock) Delete(ctx context.Context, addressID int64) error {
	return m.Called(ctx, addressID).Error(0)
}

func (m *addressRepoMock) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *addressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	return m.Called(ctx, userID, addressID).Error(0)
}

type paymentMethodRepoMock struct{ mock.Mock }

func (m *paymentMethodRepoMock) Create(ctx context.Context, pm model.PaymentMethod) (model.PaymentMethod, error) {
	args := m.Called(ctx, pm)
	created, _ := args.Get(0).(model.PaymentMethod)
	return created, args.Error(1)
}

func (m *paymentMethodRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.PaymentMethod, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.PaymentMethod)
	return list, args.Error(1)
}

func (m *paymentMethodRepoMock) FindByID(ctx context.Context, id int64) (model.PaymentMethod, error) {
	args := m.Called(ctx, id)
	pm, _ := args.Get(0).(model.PaymentMethod)
	return pm, args.Error(1)
}

func (m *paymentMethodRepoMock) Update(ctx context.Context, pm model.PaymentMethod) error {
	return m.Called(ctx, pm).Error(0)
}

func (m *paymentMethodRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *paymentMethodRepoMock) IsOwnedByUser(ctx context.Context, id, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *paymentMethodRepoMock) SetDefault(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

type resetRepoMock struct{ mock.Mock }

func (m *resetRepoMock) Create(ctx context.Context, t model.PasswordResetToken) error {
	return m.Called(ctx, t).Error(0)
}

func (m *resetRepoMock) FindValidByHash(ctx context.Context, tokenHash string, now time.Time) (model.PasswordResetToken, error) {
	args := m.Called(ctx, tokenHash, now)
	t, _ := args.Get(0).(model.PasswordResetToken)
	return t, args.Error(1)
}

func (m *resetRepoMock) MarkConsumed(ctx context.Context, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *resetRepoMock) DeleteStale(ctx context.Context, now time.Time, consumedBefore time.Time) (int64, error) {
	args := m.Called(ctx, now, consumedBefore)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// Ports
// =====================

type mailerMock struct{ mock.Mock }

func (m *mailerMock) SendEmail(ctx context.Context, key string, msg queue.EmailMessage) error {
	return m.Called(ctx, key, msg).Error(0)
}

type limiterMock struct{ mock.Mock }

func (m *limiterMock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

type cacheMock struct{ mock.Mock }

func (m *cacheMock) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *cacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

type gatewayMock struct{ mock.Mock }

func (m *gatewayMock) CreatePayment(ctx context.Context, in payment.CreateRequest) (payment.CreateResponse, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(payment.CreateResponse)
	return res, args.Error(1)
}

func (m *gatewayMock) VerifyCallback(cb payment.Callback) bool {
	return m.Called(cb).Bool(0)
}

// HTTPErrorのステータスを取り出す（HTTPErrorでなければ0）
func statusOf(err error) int {
	if he, ok := usecase.AsHTTPError(err); ok {
		return he.Status
	}
	return 0
}
