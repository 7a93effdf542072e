package repository

import (
	"context"

	"shoestore/internal/domain/model"
)

// 一覧（ページングなし）の絞り込み
type ProductFilter struct {
	Q          string
	CategoryID *int64
}

// 検索ページ用
type ProductSearchQuery struct {
	Query string
	Page  int
	Limit int
	Sort  string
}

// 検索結果1行（カテゴリ名つき）
type ProductSearchItem struct {
	ID       int64   `json:"id"`
	Code     *string `json:"product_code"`
	Name     string  `json:"name"`
	Price    int64   `json:"price"`
	ImageURL string  `json:"image_url"`
	Category *string `json:"category"`
}

type ProductSuggestion struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Code *string `json:"product_code"`
}

// 商品とサイズ別在庫の永続化
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
	Search(ctx context.Context, q ProductSearchQuery) ([]ProductSearchItem, int64, error)
	Autocomplete(ctx context.Context, keyword string, limit int) ([]ProductSuggestion, error)

	FindByID(ctx context.Context, id int64) (model.Product, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	//指定されたカラムだけ更新する
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	//サイズ別在庫（size_valueつき、並びは未保証）
	ListSizes(ctx context.Context, productID int64) ([]model.SizeStock, error)
	//同じサイズは在庫を上書き
	UpsertSizes(ctx context.Context, productID int64, sizes []model.ProductSize) error
	//全削除してから入れ直す
	ReplaceSizes(ctx context.Context, productID int64, sizes []model.ProductSize) error
	//複数商品の(product_id, size_id)行。存在しない商品は何も返らない
	ListSizeRows(ctx context.Context, productIDs []int64) ([]model.ProductSize, error)
}

// 参照データ（サイズ・カテゴリ）
type ReferenceRepository interface {
	ListSizes(ctx context.Context) ([]model.Size, error)
	//存在するsize_idだけを返す
	ExistingSizeIDs(ctx context.Context, ids []int64) ([]int64, error)
	FindSizesByIDs(ctx context.Context, ids []int64) ([]model.Size, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}
