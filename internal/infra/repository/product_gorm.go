package repository

import (
	"context"
	"strings"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 名前・品番の部分一致とカテゴリの完全一致（AND）。ページングなし
func (r *ProductGormRepository) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if q := strings.TrimSpace(f.Q); q != "" {
		like := likePattern(q)
		tx = tx.Where("(name ILIKE ? OR product_code ILIKE ?)", like, like)
	}
	if f.CategoryID != nil {
		tx = tx.Where("category_id = ?", *f.CategoryID)
	}

	var products []model.Product
	if err := tx.Order("id asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 名前・品番・カテゴリ名で検索。件数は別クエリ
func (r *ProductGormRepository) Search(ctx context.Context, q repo.ProductSearchQuery) ([]repo.ProductSearchItem, int64, error) {
	like := likePattern(strings.TrimSpace(q.Query))

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Table("products AS p").
			Joins("LEFT JOIN categories c ON c.id = p.category_id").
			Where("(p.name ILIKE ? OR p.product_code ILIKE ? OR c.name ILIKE ?)", like, like, like)
	}

	//total（件数）
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return []repo.ProductSearchItem{}, 0, err
	}

	tx := base().Select("p.id, p.product_code AS code, p.name, p.price, p.image_url, c.name AS category")

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("p.price asc").Order("p.id asc")
	case "price_desc":
		tx = tx.Order("p.price desc").Order("p.id desc")
	default:
		tx = tx.Order("p.created_at desc").Order("p.id desc")
	}

	var items []repo.ProductSearchItem
	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Scan(&items).Error; err != nil {
		return []repo.ProductSearchItem{}, 0, err
	}
	if items == nil {
		items = []repo.ProductSearchItem{}
	}
	return items, total, nil
}

func (r *ProductGormRepository) Autocomplete(ctx context.Context, keyword string, limit int) ([]repo.ProductSuggestion, error) {
	like := likePattern(strings.TrimSpace(keyword))

	var out []repo.ProductSuggestion
	err := r.db.WithContext(ctx).
		Table("products AS p").
		Select("DISTINCT p.id, p.name, p.product_code AS code").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("p.name ILIKE ? OR p.product_code ILIKE ? OR c.name ILIKE ?", like, like, like).
		Order("p.id asc").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return []repo.ProductSuggestion{}, err
	}
	if out == nil {
		out = []repo.ProductSuggestion{}
	}
	return out, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translateErr(err)
	}
	return p, nil
}

// 商品の更新（渡されたカラムだけ）
func (r *ProductGormRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		//更新なしでも存在確認はする
		_, err := r.FindByID(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（product_sizesはON DELETE CASCADE）
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) ListSizes(ctx context.Context, productID int64) ([]model.SizeStock, error) {
	var rows []model.SizeStock
	err := r.db.WithContext(ctx).
		Table("product_sizes AS ps").
		Select("ps.size_id, s.size_value AS value, ps.stock").
		Joins("JOIN sizes s ON s.id = ps.size_id").
		Where("ps.product_id = ?", productID).
		Scan(&rows).Error
	if err != nil {
		return []model.SizeStock{}, err
	}
	if rows == nil {
		rows = []model.SizeStock{}
	}
	return rows, nil
}

// まとめてINSERT、同じ(product_id,size_id)はstockを上書き
func (r *ProductGormRepository) UpsertSizes(ctx context.Context, productID int64, sizes []model.ProductSize) error {
	if len(sizes) == 0 {
		return nil
	}
	for i := range sizes {
		sizes[i].ProductID = productID
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "size_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock"}),
		}).
		Create(&sizes).Error
}

func (r *ProductGormRepository) ReplaceSizes(ctx context.Context, productID int64, sizes []model.ProductSize) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.ProductSize{}).Error; err != nil {
		return err
	}
	if len(sizes) == 0 {
		return nil
	}
	for i := range sizes {
		sizes[i].ProductID = productID
	}
	return r.db.WithContext(ctx).Create(&sizes).Error
}

func (r *ProductGormRepository) ListSizeRows(ctx context.Context, productIDs []int64) ([]model.ProductSize, error) {
	if len(productIDs) == 0 {
		return []model.ProductSize{}, nil
	}
	var rows []model.ProductSize
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&rows).Error; err != nil {
		return []model.ProductSize{}, err
	}
	return rows, nil
}
