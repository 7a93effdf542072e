package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/logger"
	repo "shoestore/internal/repository"

	"go.uber.org/zap"
)

const (
	searchDefaultLimit = 12
	searchMaxLimit     = 48

	autocompleteMinLen = 2
	autocompleteLimit  = 8
	autocompleteTTL    = 60 * time.Second
)

type ProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	refRepo     repo.ReferenceRepository
	cache       Cache
}

// DI（cacheはnil可）
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	refRepo repo.ReferenceRepository,
	cache Cache,
) *ProductUsecase {
	return &ProductUsecase{
		tx:          tx,
		productRepo: productRepo,
		refRepo:     refRepo,
		cache:       cache,
	}
}

// 商品詳細（サイズ別在庫つき）
type ProductDetail struct {
	model.Product
	Sizes []model.SizeStock `json:"sizes"`
}

type SizeStockInput struct {
	SizeID int64 `json:"size_id"`
	Stock  int64 `json:"stock"`
}

// POST /admin/products の入力。name と price は必須
type ProductCreateInput struct {
	Code        *string
	Name        string
	Price       *int64
	Description string
	ImageURL    string
	CategoryID  *int64
	Sizes       []SizeStockInput
}

// PUT /admin/products/:id の入力。nilは変更しない
type ProductUpdateInput struct {
	Code        *string
	Name        *string
	Price       *int64
	Description *string
	ImageURL    *string
	CategoryID  *int64
	//nilなら触らない。空配列なら全サイズ削除
	Sizes *[]SizeStockInput
}

type SearchInput struct {
	Query string
	Page  int
	Limit int
	Sort  string
}

type SearchOutput struct {
	Items []repo.ProductSearchItem `json:"items"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

// GET /products（ページングなし）
func (u *ProductUsecase) FindAll(ctx context.Context, q string, categoryID *int64) ([]model.Product, error) {
	if len(q) > 100 {
		return nil, badRequest("q too long")
	}

	items, err := u.productRepo.List(ctx, repo.ProductFilter{
		Q:          strings.TrimSpace(q),
		CategoryID: categoryID,
	})
	if err != nil {
		return nil, dbError("product list", err)
	}
	return items, nil
}

func (u *ProductUsecase) FindOne(ctx context.Context, productID int64) (ProductDetail, error) {
	if productID <= 0 {
		return ProductDetail{}, badRequest("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetail{}, notFound()
	}
	if err != nil {
		return ProductDetail{}, dbError("product find", err)
	}

	sizes, err := u.productRepo.ListSizes(ctx, productID)
	if err != nil {
		return ProductDetail{}, dbError("product sizes", err)
	}
	//数値順（35, 35.5, 36 ...）
	model.SortSizeStocks(sizes)

	return ProductDetail{Product: p, Sizes: sizes}, nil
}

func (u *ProductUsecase) Create(ctx context.Context, actorUserID int64, in ProductCreateInput) (ProductDetail, error) {
	if actorUserID <= 0 {
		return ProductDetail{}, unauthorized()
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ProductDetail{}, badRequest("name required")
	}
	if in.Price == nil {
		return ProductDetail{}, badRequest("price required")
	}
	if *in.Price < 0 {
		return ProductDetail{}, badRequest("price must be >= 0")
	}
	sizes, err := toProductSizes(in.Sizes)
	if err != nil {
		return ProductDetail{}, err
	}

	var created model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := checkSizeIDs(ctx, r.References(), sizes); err != nil {
			return err
		}
		if err := checkCategory(ctx, r.References(), in.CategoryID); err != nil {
			return err
		}

		p, err := r.Products().Create(ctx, model.Product{
			Code:        normalizeCode(in.Code),
			Name:        name,
			Price:       *in.Price,
			Description: in.Description,
			ImageURL:    strings.TrimSpace(in.ImageURL),
			CategoryID:  in.CategoryID,
		})
		if errors.Is(err, repo.ErrConflict) {
			return conflict("product_code already exists")
		}
		if errors.Is(err, repo.ErrInvalidRef) {
			return badRequest("unknown category_id")
		}
		if err != nil {
			return dbError("product create", err)
		}

		if err := r.Products().UpsertSizes(ctx, p.ID, sizes); err != nil {
			return dbError("product sizes upsert", err)
		}

		if err := writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, nil, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return ProductDetail{}, txError("product create", err)
	}

	return u.FindOne(ctx, created.ID)
}

func (u *ProductUsecase) Update(ctx context.Context, actorUserID int64, productID int64, in ProductUpdateInput) (ProductDetail, error) {
	if actorUserID <= 0 {
		return ProductDetail{}, unauthorized()
	}
	if productID <= 0 {
		return ProductDetail{}, badRequest("invalid product id")
	}

	fields := map[string]interface{}{}
	if in.Code != nil {
		fields["product_code"] = normalizeCode(in.Code)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return ProductDetail{}, badRequest("name required")
		}
		fields["name"] = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return ProductDetail{}, badRequest("price must be >= 0")
		}
		fields["price"] = *in.Price
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if in.CategoryID != nil {
		fields["category_id"] = *in.CategoryID
	}

	var sizes []model.ProductSize
	if in.Sizes != nil {
		var err error
		if sizes, err = toProductSizes(*in.Sizes); err != nil {
			return ProductDetail{}, err
		}
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("product find", err)
		}
		if err := checkCategory(ctx, r.References(), in.CategoryID); err != nil {
			return err
		}

		if err := r.Products().Update(ctx, productID, fields); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			if errors.Is(err, repo.ErrConflict) {
				return conflict("product_code already exists")
			}
			if errors.Is(err, repo.ErrInvalidRef) {
				return badRequest("unknown category_id")
			}
			return dbError("product update", err)
		}

		//sizesが来たときだけ丸ごと入れ替え
		if in.Sizes != nil {
			if err := checkSizeIDs(ctx, r.References(), sizes); err != nil {
				return err
			}
			if err := r.Products().ReplaceSizes(ctx, productID, sizes); err != nil {
				return dbError("product sizes replace", err)
			}
		}

		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, fields)
	})
	if err != nil {
		return ProductDetail{}, txError("product update", err)
	}

	return u.FindOne(ctx, productID)
}

// 削除（product_sizesはカスケード）
func (u *ProductUsecase) Delete(ctx context.Context, actorUserID int64, productID int64) error {
	if actorUserID <= 0 {
		return unauthorized()
	}
	if productID <= 0 {
		return badRequest("invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("product find", err)
		}

		if err := r.Products().Delete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			return dbError("product delete", err)
		}

		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, before, nil)
	})
	return txError("product delete", err)
}

// GET /products/search
func (u *ProductUsecase) Search(ctx context.Context, in SearchInput) (SearchOutput, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return SearchOutput{}, badRequest("query required")
	}
	if len(query) > 100 {
		return SearchOutput{}, badRequest("query too long")
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit == 0 {
		limit = searchDefaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > searchMaxLimit {
		limit = searchMaxLimit
	}

	sort := in.Sort
	switch sort {
	case "newest", "price_asc", "price_desc":
	default:
		sort = "newest"
	}

	items, total, err := u.productRepo.Search(ctx, repo.ProductSearchQuery{
		Query: query,
		Page:  page,
		Limit: limit,
		Sort:  sort,
	})
	if err != nil {
		return SearchOutput{}, dbError("product search", err)
	}

	return SearchOutput{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// GET /products/autocomplete。2文字未満は空
func (u *ProductUsecase) Autocomplete(ctx context.Context, keyword string) ([]repo.ProductSuggestion, error) {
	keyword = strings.TrimSpace(keyword)
	if len([]rune(keyword)) < autocompleteMinLen {
		return []repo.ProductSuggestion{}, nil
	}

	key := "autocomplete:" + strings.ToLower(keyword)
	if u.cache != nil {
		if raw, ok, err := u.cache.Get(ctx, key); err == nil && ok {
			var cached []repo.ProductSuggestion
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	items, err := u.productRepo.Autocomplete(ctx, keyword, autocompleteLimit)
	if err != nil {
		return nil, dbError("product autocomplete", err)
	}

	if u.cache != nil {
		if b, err := json.Marshal(items); err == nil {
			if err := u.cache.Set(ctx, key, string(b), autocompleteTTL); err != nil {
				logger.L().Warn("autocomplete cache set", zap.Error(err))
			}
		}
	}
	return items, nil
}

// 1サイズの在庫を設定（調整履歴＋監査ログ）
func (u *ProductUsecase) UpdateSizeStock(ctx context.Context, actorUserID int64, productID, sizeID int64, newStock int64, reason string) error {
	if actorUserID <= 0 {
		return unauthorized()
	}
	if productID <= 0 || sizeID <= 0 {
		return badRequest("invalid id")
	}
	if newStock < 0 {
		return badRequest("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual adjustment"
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（行ロック）
		before, err := r.Inventory().GetStockForUpdate(ctx, productID, sizeID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("stock find", err)
		}

		if err := r.Inventory().SetStock(ctx, productID, sizeID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			return dbError("stock set", err)
		}

		//履歴を作成（差分）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			SizeID:      sizeID,
			ActorUserID: actorUserID,
			Delta:       newStock - before,
			Reason:      reason,
		}); err != nil {
			return dbError("stock adjustment", err)
		}

		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionUpdateStock, model.AuditResourceProduct, productID,
			map[string]int64{"size_id": sizeID, "stock": before},
			map[string]int64{"size_id": sizeID, "stock": newStock},
		)
	})
	return txError("stock update", err)
}

func (u *ProductUsecase) ListSizes(ctx context.Context) ([]model.Size, error) {
	sizes, err := u.refRepo.ListSizes(ctx)
	if err != nil {
		return nil, dbError("size list", err)
	}
	return sizes, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := u.refRepo.ListCategories(ctx)
	if err != nil {
		return nil, dbError("category list", err)
	}
	return cats, nil
}

func toProductSizes(in []SizeStockInput) ([]model.ProductSize, error) {
	out := make([]model.ProductSize, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for _, s := range in {
		if s.SizeID <= 0 {
			return nil, badRequest("invalid size_id")
		}
		if s.Stock < 0 {
			return nil, badRequest("stock must be >= 0")
		}
		if _, dup := seen[s.SizeID]; dup {
			return nil, badRequest(fmt.Sprintf("duplicate size_id %d", s.SizeID))
		}
		seen[s.SizeID] = struct{}{}
		out = append(out, model.ProductSize{SizeID: s.SizeID, Stock: s.Stock})
	}
	return out, nil
}

// 存在しないsize_idが1つでもあれば400
func checkSizeIDs(ctx context.Context, refs repo.ReferenceRepository, sizes []model.ProductSize) error {
	if len(sizes) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(sizes))
	for _, s := range sizes {
		ids = append(ids, s.SizeID)
	}

	existing, err := refs.ExistingSizeIDs(ctx, ids)
	if err != nil {
		return dbError("size lookup", err)
	}
	found := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown size_id %d", id))
		}
	}
	return nil
}

// category_idは任意。指定されたら存在するものだけ
func checkCategory(ctx context.Context, refs repo.ReferenceRepository, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if *categoryID <= 0 {
		return badRequest("invalid category_id")
	}
	ok, err := refs.CategoryExists(ctx, *categoryID)
	if err != nil {
		return dbError("category lookup", err)
	}
	if !ok {
		return badRequest("unknown category_id")
	}
	return nil
}

// 空文字はNULL（一意制約に引っかけない）
func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	c := strings.TrimSpace(*code)
	if c == "" {
		return nil
	}
	return &c
}
