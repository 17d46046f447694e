// Package catalog sert les produits, collections, articles de blog et avis de la boutique.
package catalog

import (
	"context"
	"io"
	"math"
	"strings"
	"time"

	"maeva_back_end/internal/cache"
	"maeva_back_end/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Search Searcher
	Images ImageStore
	Now    func() time.Time
}

type Service struct {
	repo   Repository
	cache  *cache.JSON
	search Searcher
	images ImageStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(repo Repository, c *cache.JSON, logger *logrus.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:   repo,
		cache:  c,
		search: opts.Search,
		images: opts.Images,
		logger: logger,
		now:    opts.Now,
	}
}

func (s *Service) allProducts(ctx context.Context) ([]models.Product, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.ProductsKey, s.repo.ListProducts)
}

// Products applique les paramètres de GET /api/products (hors id).
func (s *Service) Products(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	all, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	items := all
	if term := strings.TrimSpace(q.Search); term != "" {
		items = s.searchProducts(ctx, term, all)
	}
	return s.withImageURLs(ctx, Filter(items, q)), nil
}

func (s *Service) searchProducts(ctx context.Context, term string, all []models.Product) []models.Product {
	if s.search != nil {
		ids, err := s.search.Search(ctx, term)
		if err == nil {
			byID := make(map[string]models.Product, len(all))
			for _, p := range all {
				byID[p.ID] = p
			}
			out := make([]models.Product, 0, len(ids))
			for _, id := range ids {
				if p, ok := byID[id]; ok {
					out = append(out, p)
				}
			}
			return out
		}
		s.logger.WithError(err).Warn("⚠️ Recherche Elasticsearch indisponible, recherche locale")
	}

	var out []models.Product
	for _, p := range all {
		if MatchText(p, term) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) Product(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.withImageURLs(ctx, []models.Product{*p})[0]
	return &out, nil
}

// withImageURLs remplace les clés d'objets par des URL signées, sans toucher au cache.
func (s *Service) withImageURLs(ctx context.Context, products []models.Product) []models.Product {
	if s.images == nil {
		return products
	}
	out := make([]models.Product, len(products))
	for i, p := range products {
		urls := make([]string, 0, len(p.ImageURLs))
		for _, key := range p.ImageURLs {
			u, err := s.images.URL(ctx, key)
			if err != nil {
				s.logger.WithError(err).WithField("key", key).Warn("⚠️ URL signée impossible")
				continue
			}
			urls = append(urls, u)
		}
		p.ImageURLs = urls
		out[i] = p
	}
	return out
}

func (s *Service) Collections(ctx context.Context) ([]models.Collection, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.CollectionsKey, s.repo.ListCollections)
}

// Collection accepte l'identifiant ou le slug.
func (s *Service) Collection(ctx context.Context, idOrSlug string) (*models.Collection, error) {
	all, err := s.Collections(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == idOrSlug || strings.EqualFold(c.Slug, idOrSlug) {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Service) BlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.BlogKey, s.repo.ListBlogPosts)
}

func (s *Service) BlogPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	posts, err := s.BlogPosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if strings.EqualFold(p.Slug, slug) {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Reviews retourne les avis d'un produit et sa note moyenne (arrondie au dixième).
func (s *Service) Reviews(ctx context.Context, productID string) ([]models.Review, models.ProductRating, error) {
	rating := models.ProductRating{ProductID: productID}
	reviews, err := s.repo.ListReviews(ctx, productID)
	if err != nil {
		return nil, rating, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	rating.TotalReviews = len(reviews)
	if len(reviews) > 0 {
		rating.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return reviews, rating, nil
}

type ReviewInput struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Service) AddReview(ctx context.Context, productID string, in ReviewInput) (*models.Review, error) {
	name, comment := strings.TrimSpace(in.Name), strings.TrimSpace(in.Comment)
	switch {
	case in.Rating < 1 || in.Rating > 5:
		return nil, &InputError{Message: "La note doit être comprise entre 1 et 5"}
	case name == "":
		return nil, &InputError{Message: "Le nom est requis"}
	case comment == "":
		return nil, &InputError{Message: "Le commentaire est requis"}
	case len(comment) > 1000:
		return nil, &InputError{Message: "Le commentaire est trop long"}
	}

	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	r := models.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		Name:      name,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddReview(ctx, r); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"product_id": productID, "rating": r.Rating}).Info("⭐ Nouvel avis")
	return &r, nil
}

// ---- Administration ----

func validateProduct(p models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return &InputError{Message: "Le nom du produit est requis"}
	case p.Price < 0:
		return &InputError{Message: "Le prix doit être positif"}
	case p.CompareAtPrice < 0:
		return &InputError{Message: "Le prix barré doit être positif"}
	case p.Stock < 0:
		return &InputError{Message: "Le stock doit être positif"}
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt, p.UpdatedAt = now, now
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}

	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	s.productChanged(ctx, p)
	s.logger.WithField("product_id", p.ID).Info("✅ Produit créé")
	return &p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in models.Product) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	in.ID = existing.ID
	in.Name = strings.TrimSpace(in.Name)
	in.CreatedAt = existing.CreatedAt
	in.UpdatedAt = s.now().UTC()
	if in.ImageURLs == nil {
		in.ImageURLs = existing.ImageURLs
	}

	if err := s.repo.SaveProduct(ctx, in); err != nil {
		return nil, err
	}
	s.productChanged(ctx, in)
	s.logger.WithField("product_id", in.ID).Info("✏️ Produit mis à jour")
	return &in, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.ProductsKey)
	if s.search != nil {
		if err := s.search.Remove(ctx, id); err != nil {
			s.logger.WithError(err).WithField("product_id", id).Warn("⚠️ Suppression de l'index impossible")
		}
	}
	s.logger.WithField("product_id", id).Info("🗑️ Produit supprimé")
	return nil
}

// UploadProductImage envoie l'image et ajoute sa clé au produit.
func (s *Service) UploadProductImage(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (*models.Product, error) {
	if s.images == nil {
		return nil, ErrImagesUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &InputError{Message: "Le fichier doit être une image"}
	}
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Upload(ctx, productID, filename, r, size, contentType)
	if err != nil {
		return nil, err
	}
	p.ImageURLs = append(p.ImageURLs, key)
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveProduct(ctx, *p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ProductsKey)

	out := s.withImageURLs(ctx, []models.Product{*p})[0]
	return &out, nil
}

func (s *Service) productChanged(ctx context.Context, p models.Product) {
	s.cache.Invalidate(ctx, cache.ProductsKey)
	if s.search == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.search.Index(ctx, p); err != nil {
			s.logger.WithError(err).WithField("product_id", p.ID).Warn("⚠️ Indexation Elasticsearch échouée")
		}
	}()
}

func validateCollection(c models.Collection) error {
	if strings.TrimSpace(c.Name) == "" {
		return &InputError{Message: "Le nom de la collection est requis"}
	}
	return nil
}

// Slugify produit un slug ASCII à partir d'un nom.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case strings.ContainsRune("àâä", r):
			b.WriteRune('a')
			dash = false
		case strings.ContainsRune("éèêë", r):
			b.WriteRune('e')
			dash = false
		case strings.ContainsRune("îï", r):
			b.WriteRune('i')
			dash = false
		case strings.ContainsRune("ôö", r):
			b.WriteRune('o')
			dash = false
		case strings.ContainsRune("ùûü", r):
			b.WriteRune('u')
			dash = false
		case r == 'ç':
			b.WriteRune('c')
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteRune('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *Service) CreateCollection(ctx context.Context, c models.Collection) (*models.Collection, error) {
	if err := validateCollection(c); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c.ID = uuid.NewString()
	c.Name = strings.TrimSpace(c.Name)
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.repo.SaveCollection(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.CollectionsKey)
	return &c, nil
}

func (s *Service) UpdateCollection(ctx context.Context, id string, in models.Collection) (*models.Collection, error) {
	if err := validateCollection(in); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID = existing.ID
	in.Name = strings.TrimSpace(in.Name)
	if in.Slug == "" {
		in.Slug = existing.Slug
	}
	in.CreatedAt = existing.CreatedAt
	in.UpdatedAt = s.now().UTC()

	if err := s.repo.SaveCollection(ctx, in); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.CollectionsKey)
	return &in, nil
}

func (s *Service) DeleteCollection(ctx context.Context, id string) error {
	if err := s.repo.DeleteCollection(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.CollectionsKey)
	return nil
}
