package usecase

import (
	"context"
	"errors"
	"sort"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
)

// /cart の業務ロジック
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// priceは現在の商品価格（注文時に改めて焼き付ける）
type CartItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"`
	SizeID    int64  `json:"size_id"`
	SizeValue string `json:"size_value"`
	Quantity  int64  `json:"quantity"`
	Stock     int64  `json:"stock"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Subtotal int64              `json:"subtotal"`
}

type AddCartInput struct {
	ProductID int64
	SizeID    int64
	Quantity  int64
}

// カート取得（無ければACTIVEを作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError("cart get", err)
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// カートに追加（同じ商品・サイズは数量加算）
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}
	if in.ProductID <= 0 {
		return CartResponse{}, badRequest("invalid product_id")
	}
	if in.SizeID <= 0 {
		return CartResponse{}, badRequest("invalid size_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, badRequest("invalid quantity")
	}

	stock, err := u.sizeStock(ctx, in.ProductID, in.SizeID)
	if err != nil {
		return CartResponse{}, err
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError("cart get", err)
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, dbError("cart items", err)
	}
	var existingQty int64
	for _, it := range items {
		if it.ProductID == in.ProductID && it.SizeID == in.SizeID {
			existingQty = it.Quantity
			break
		}
	}
	if existingQty+in.Quantity > stock {
		return CartResponse{}, badRequest("stock exceeded")
	}

	if err := u.cartItemRepo.UpsertLine(ctx, cart.ID, model.CartLine{
		ProductID: in.ProductID,
		SizeID:    in.SizeID,
		Quantity:  in.Quantity,
	}); err != nil {
		return CartResponse{}, dbError("cart upsert", err)
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 数量変更（所有チェック＋在庫チェック）
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, qty int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}
	if cartItemID <= 0 {
		return CartResponse{}, badRequest("invalid id")
	}
	if qty < 1 {
		return CartResponse{}, badRequest("invalid quantity")
	}

	if err := u.checkOwned(ctx, userID, cartItemID); err != nil {
		return CartResponse{}, err
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, notFound()
	}
	if err != nil {
		return CartResponse{}, dbError("cart item find", err)
	}

	stock, err := u.sizeStock(ctx, item.ProductID, item.SizeID)
	if err != nil {
		return CartResponse{}, err
	}
	if qty > stock {
		return CartResponse{}, badRequest("stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, notFound()
		}
		return CartResponse{}, dbError("cart item update", err)
	}

	return u.buildCartResponse(ctx, item.CartID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}
	if cartItemID <= 0 {
		return CartResponse{}, badRequest("invalid id")
	}

	if err := u.checkOwned(ctx, userID, cartItemID); err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, notFound()
		}
		return CartResponse{}, dbError("cart item delete", err)
	}

	return u.GetCart(ctx, userID)
}

// DELETE /cart/clear
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return unauthorized()
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dbError("cart find", err)
	}
	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return dbError("cart clear", err)
	}
	return nil
}

// ログイン時にゲストカートを1トランザクションでまとめて加算する。
// 同じ(product,size)は先に合算。存在しない商品・サイズの行は捨てる
func (u *CartUsecase) MergeCart(ctx context.Context, userID int64, lines []model.CartLine) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorized()
	}
	for _, l := range lines {
		if l.ProductID <= 0 || l.SizeID <= 0 || l.Quantity < 1 {
			return CartResponse{}, badRequest("invalid line")
		}
	}

	merged := aggregateLines(lines)
	merged, err := u.dropUnknown(ctx, merged)
	if err != nil {
		return CartResponse{}, err
	}

	var cartID int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return dbError("cart get", err)
		}
		cartID = cart.ID

		if err := r.CartItems().MergeLines(ctx, cart.ID, merged); err != nil {
			return dbError("cart merge", err)
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, txError("cart merge", err)
	}

	return u.buildCartResponse(ctx, cartID)
}

// 同じ(product,size)を1行にまとめる（ON CONFLICTは同じ行を2回触れない）
func aggregateLines(lines []model.CartLine) []model.CartLine {
	type key struct{ p, s int64 }
	idx := make(map[key]int, len(lines))
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		k := key{l.ProductID, l.SizeID}
		if i, ok := idx[k]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[k] = len(out)
		out = append(out, l)
	}
	return out
}

func (u *CartUsecase) dropUnknown(ctx context.Context, lines []model.CartLine) ([]model.CartLine, error) {
	if len(lines) == 0 {
		return lines, nil
	}

	productIDs := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		productIDs = append(productIDs, l.ProductID)
	}

	//商品が扱っている(product, size)だけ残す
	rows, err := u.productRepo.ListSizeRows(ctx, productIDs)
	if err != nil {
		return nil, dbError("product sizes", err)
	}
	type key struct{ p, s int64 }
	offered := make(map[key]struct{}, len(rows))
	for _, r := range rows {
		offered[key{r.ProductID, r.SizeID}] = struct{}{}
	}

	out := lines[:0]
	for _, l := range lines {
		if _, ok := offered[key{l.ProductID, l.SizeID}]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (u *CartUsecase) checkOwned(ctx context.Context, userID, cartItemID int64) error {
	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return dbError("cart item owner", err)
	}
	if !owned {
		return notFound()
	}
	return nil
}

// 商品×サイズの在庫。行が無ければ400
func (u *CartUsecase) sizeStock(ctx context.Context, productID, sizeID int64) (int64, error) {
	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, badRequest("invalid product")
		}
		return 0, dbError("product find", err)
	}

	sizes, err := u.productRepo.ListSizes(ctx, productID)
	if err != nil {
		return 0, dbError("product sizes", err)
	}
	for _, s := range sizes {
		if s.SizeID == sizeID {
			return s.Stock, nil
		}
	}
	return 0, badRequest("size not available")
}

// cartIDの明細をまとめてCartResponseを作る
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, dbError("cart items", err)
	}

	products, err := productPrices(ctx, u.productRepo, items)
	if err != nil {
		return CartResponse{}, err
	}

	//商品ごとのサイズ表（値と在庫）
	sizesByProduct := make(map[int64]map[int64]model.SizeStock, len(products))
	for id := range products {
		rows, err := u.productRepo.ListSizes(ctx, id)
		if err != nil {
			return CartResponse{}, dbError("product sizes", err)
		}
		m := make(map[int64]model.SizeStock, len(rows))
		for _, r := range rows {
			m[r.SizeID] = r
		}
		sizesByProduct[id] = m
	}

	resp := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			//削除された商品は表示しない
			continue
		}
		ss := sizesByProduct[it.ProductID][it.SizeID]

		resp.Items = append(resp.Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			Price:     p.Price,
			SizeID:    it.SizeID,
			SizeValue: ss.Value,
			Quantity:  it.Quantity,
			Stock:     ss.Stock,
		})
		resp.Subtotal += p.Price * it.Quantity
	}

	sort.SliceStable(resp.Items, func(i, j int) bool { return resp.Items[i].ID < resp.Items[j].ID })
	return resp, nil
}

// 明細に出てくる商品をまとめて取る
func productPrices(ctx context.Context, products repo.ProductRepository, items []model.CartItem) (map[int64]model.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	if len(ids) == 0 {
		return map[int64]model.Product{}, nil
	}

	list, err := products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, dbError("product list", err)
	}
	out := make(map[int64]model.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}
