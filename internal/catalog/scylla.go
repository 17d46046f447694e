package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"maeva_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaRepository lit et écrit le catalogue dans le keyspace produits.
type ScyllaRepository struct {
	session *gocql.Session
}

func NewScyllaRepository(session *gocql.Session) *ScyllaRepository {
	return &ScyllaRepository{session: session}
}

func parseID(id string) (gocql.UUID, error) {
	u, err := gocql.ParseUUID(id)
	if err != nil {
		return gocql.UUID{}, ErrNotFound
	}
	return u, nil
}

const productColumns = `product_id, name, description, price, compare_at_price, category, collection_id,
	colors, sizes, tags, image_urls, featured, stock, created_at, updated_at`

func scanProduct(scan func(dest ...interface{}) bool) (models.Product, bool) {
	var (
		p  models.Product
		id gocql.UUID
	)
	ok := scan(&id, &p.Name, &p.Description, &p.Price, &p.CompareAtPrice, &p.Category, &p.CollectionID,
		&p.Colors, &p.Sizes, &p.Tags, &p.ImageURLs, &p.Featured, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	p.ID = id.String()
	return p, ok
}

func (r *ScyllaRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := r.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	for {
		p, ok := scanProduct(iter.Scan)
		if !ok {
			break
		}
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture des produits: %w", err)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	return products, nil
}

func (r *ScyllaRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var scanErr error
	p, _ := scanProduct(func(dest ...interface{}) bool {
		scanErr = r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, uid).
			WithContext(ctx).Scan(dest...)
		return scanErr == nil
	})
	if errors.Is(scanErr, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return &p, nil
}

func (r *ScyllaRepository) SaveProduct(ctx context.Context, p models.Product) error {
	uid, err := gocql.ParseUUID(p.ID)
	if err != nil {
		return fmt.Errorf("identifiant produit invalide: %w", err)
	}
	return r.session.Query(`INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uid, p.Name, p.Description, p.Price, p.CompareAtPrice, p.Category, p.CollectionID,
		p.Colors, p.Sizes, p.Tags, p.ImageURLs, p.Featured, p.Stock, p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaRepository) DeleteProduct(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM products WHERE product_id = ?`, uid)
	batch.Query(`DELETE FROM reviews_by_product WHERE product_id = ?`, uid)
	return r.session.ExecuteBatch(batch)
}

const collectionColumns = `collection_id, name, slug, description, image_url, created_at, updated_at`

func (r *ScyllaRepository) ListCollections(ctx context.Context) ([]models.Collection, error) {
	iter := r.session.Query(`SELECT ` + collectionColumns + ` FROM collections`).WithContext(ctx).Iter()

	var (
		collections []models.Collection
		c           models.Collection
		id          gocql.UUID
	)
	for iter.Scan(&id, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt) {
		c.ID = id.String()
		collections = append(collections, c)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture des collections: %w", err)
	}
	sort.Slice(collections, func(i, j int) bool { return collections[i].Name < collections[j].Name })
	return collections, nil
}

func (r *ScyllaRepository) GetCollection(ctx context.Context, id string) (*models.Collection, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var c models.Collection
	err = r.session.Query(`SELECT `+collectionColumns+` FROM collections WHERE collection_id = ?`, uid).
		WithContext(ctx).Scan(&uid, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.ID = uid.String()
	return &c, nil
}

func (r *ScyllaRepository) SaveCollection(ctx context.Context, c models.Collection) error {
	uid, err := gocql.ParseUUID(c.ID)
	if err != nil {
		return fmt.Errorf("identifiant collection invalide: %w", err)
	}
	return r.session.Query(`INSERT INTO collections (`+collectionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uid, c.Name, c.Slug, c.Description, c.ImageURL, c.CreatedAt, c.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *ScyllaRepository) DeleteCollection(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.session.Query(`DELETE FROM collections WHERE collection_id = ?`, uid).WithContext(ctx).Exec()
}

func (r *ScyllaRepository) ListBlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	iter := r.session.Query(`SELECT post_id, slug, title, excerpt, content, cover_image, author, published_at
		FROM blog_posts`).WithContext(ctx).Iter()

	var (
		posts []models.BlogPost
		p     models.BlogPost
		id    gocql.UUID
	)
	for iter.Scan(&id, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.CoverImage, &p.Author, &p.PublishedAt) {
		p.ID = id.String()
		posts = append(posts, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture du blog: %w", err)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].PublishedAt.After(posts[j].PublishedAt) })
	return posts, nil
}

// Les avis sont triés par date décroissante (clustering de reviews_by_product).
func (r *ScyllaRepository) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	uid, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	iter := r.session.Query(`SELECT review_id, name, rating, comment, created_at
		FROM reviews_by_product WHERE product_id = ?`, uid).WithContext(ctx).Iter()

	var (
		reviews   []models.Review
		reviewID  gocql.UUID
		name      string
		rating    int
		comment   string
		createdAt time.Time
	)
	for iter.Scan(&reviewID, &name, &rating, &comment, &createdAt) {
		reviews = append(reviews, models.Review{
			ID:        reviewID.String(),
			ProductID: productID,
			Name:      name,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: createdAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture des avis: %w", err)
	}
	return reviews, nil
}

func (r *ScyllaRepository) AddReview(ctx context.Context, rev models.Review) error {
	productID, err := gocql.ParseUUID(rev.ProductID)
	if err != nil {
		return ErrNotFound
	}
	reviewID, err := gocql.ParseUUID(rev.ID)
	if err != nil {
		return fmt.Errorf("identifiant avis invalide: %w", err)
	}
	return r.session.Query(`INSERT INTO reviews_by_product (product_id, created_at, review_id, name, rating, comment)
		VALUES (?, ?, ?, ?, ?, ?)`,
		productID, rev.CreatedAt, reviewID, rev.Name, rev.Rating, rev.Comment,
	).WithContext(ctx).Exec()
}
