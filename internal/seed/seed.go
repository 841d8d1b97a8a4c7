// Package seed loads the demo catalog and accounts into an empty database.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agrirate/agrirate/internal/auth"
	"github.com/agrirate/agrirate/internal/domain"
	"github.com/agrirate/agrirate/internal/repository"
	"github.com/agrirate/agrirate/internal/service"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

type account struct {
	name  string
	email string
	role  domain.Role
}

var accounts = []account{
	{"Admin", "admin@example.com", domain.RoleAdmin},
	{"Demo User", "demo@example.com", domain.RoleRater},
	{"Pak Tani", "tani@example.com", domain.RoleRater},
	{"Pembeli", "buyer@example.com", domain.RoleUser},
}

var products = []repository.ProductCreateParams{
	{
		Name:        "BioPlantz Nutrisi Tanaman",
		Description: "Nutrisi organik lengkap untuk semua jenis tanaman. Mempercepat pertumbuhan dan meningkatkan hasil panen.",
		Price:       75000,
		Image:       "/images/bioplantz.png",
	},
	{
		Name:        "GrowMax Pupuk Organik",
		Description: "Pupuk organik premium yang kaya akan nutrisi esensial untuk pertumbuhan tanaman yang optimal.",
		Price:       120000,
		Image:       "/images/growmax.png",
	},
	{
		Name:        "AgroBoost Penguat Tanaman",
		Description: "Formula khusus untuk meningkatkan ketahanan tanaman terhadap hama dan penyakit.",
		Price:       95000,
		Image:       "/images/agroboost.png",
	},
	{
		Name:        "HydroFresh Pelembab Tanah",
		Description: "Menjaga kelembaban tanah dan meningkatkan efisiensi penyerapan air untuk tanaman.",
		Price:       85000,
		Image:       "/images/hydrofresh.png",
	},
}

type sampleRating struct {
	email   string
	product int
	value   int
	comment string
}

var sampleRatings = []sampleRating{
	{"demo@example.com", 0, 5, "Produk sangat bagus, tanaman saya tumbuh subur!"},
	{"tani@example.com", 0, 4, "Cukup bagus, tapi harganya sedikit mahal."},
	{"demo@example.com", 1, 5, "Sangat memuaskan, hasil panen meningkat signifikan."},
}

// Result summarizes what a run inserted.
type Result struct {
	Users    int
	Products int
	Ratings  int
}

// Run inserts missing demo accounts and, when the catalog is empty, the demo
// products with a few sample ratings. Running it twice is harmless.
func Run(ctx context.Context, repo *repository.Repository, ratings *service.RatingService, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return res, err
	}
	actors := make(map[string]domain.Actor, len(accounts))
	for _, a := range accounts {
		user, err := repo.Users.GetByEmail(ctx, a.email)
		if errors.Is(err, repository.ErrNotFound) {
			user, err = repo.Users.Create(ctx, repository.UserCreateParams{
				Name: a.name, Email: a.email, PasswordHash: hash, Role: a.role,
			})
			if err == nil {
				res.Users++
			}
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", a.email, err)
		}
		actors[a.email] = domain.Actor{ID: user.ID, Role: user.Role}
	}

	existing, err := repo.Products.ListWithStats(ctx)
	if err != nil {
		return res, fmt.Errorf("list products: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("catalog already seeded", zap.Int("products", len(existing)))
		return res, nil
	}

	created := make([]domain.Product, 0, len(products))
	for _, p := range products {
		product, err := repo.Products.Create(ctx, p)
		if err != nil {
			return res, fmt.Errorf("seed product %s: %w", p.Name, err)
		}
		created = append(created, product)
		res.Products++
	}

	for _, sr := range sampleRatings {
		if _, err := ratings.Submit(ctx, actors[sr.email], service.SubmitInput{
			ProductID: created[sr.product].ID,
			Value:     sr.value,
			Comment:   service.SetString(sr.comment),
		}); err != nil {
			return res, fmt.Errorf("seed rating: %w", err)
		}
		res.Ratings++
	}

	logger.Info("seed complete",
		zap.Int("users", res.Users),
		zap.Int("products", res.Products),
		zap.Int("ratings", res.Ratings),
	)
	return res, nil
}
