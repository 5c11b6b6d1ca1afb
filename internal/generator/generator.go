package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/tallyline/internal/service"
)

// Dataset contains the generated orders and users.
type Dataset struct {
	Orders []service.OrderInput `json:"orders" yaml:"orders"`
	Users  []service.UserInput  `json:"users" yaml:"users"`
}

// Generator produces synthetic orders and users. The same seed always
// yields the same dataset, order IDs included.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
	now           time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumOrders <= 0 {
		cfg.NumOrders = defaults.NumOrders
	}
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = defaults.NumUsers
	}
	if cfg.MaxItemsPerOrder <= 0 {
		cfg.MaxItemsPerOrder = defaults.MaxItemsPerOrder
	}
	if cfg.MissingEmailChance < 0 {
		cfg.MissingEmailChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
		now:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generate synthesises users and orders. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	users := make([]service.UserInput, g.cfg.NumUsers)
	for i := range users {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		userID := fmt.Sprintf("USR-%06d", i+1)
		first, last := g.randomName()
		user := service.UserInput{
			ID:   userID,
			Name: first + " " + last,
			Attributes: map[string]any{
				"plan": g.pick(g.nameFragments.plans),
			},
		}
		if g.rand.Float64() >= g.cfg.MissingEmailChance {
			email := g.randomEmail(first, last)
			user.Email = &email
		}
		users[i] = user
	}

	orders := make([]service.OrderInput, g.cfg.NumOrders)
	for i := range orders {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		id, err := uuid.NewRandomFromReader(g.rand)
		if err != nil {
			return Dataset{}, fmt.Errorf("order id: %w", err)
		}
		placedAt := g.now.Add(-time.Duration(g.rand.Intn(90*24*60)) * time.Minute)

		orders[i] = service.OrderInput{
			ID:         id.String(),
			CustomerID: users[g.rand.Intn(len(users))].ID,
			Items:      g.randomItems(),
			PlacedAt:   &placedAt,
		}
	}

	return Dataset{Orders: orders, Users: users}, nil
}

func (g *Generator) randomItems() []service.LineItemInput {
	count := 1 + g.rand.Intn(g.cfg.MaxItemsPerOrder)
	items := make([]service.LineItemInput, count)
	for i := range items {
		// Whole cents keep generated prices representable as typed by a shopper.
		price := math.Round((g.rand.Float64()*250+0.5)*100) / 100
		quantity := float64(1 + g.rand.Intn(5))
		items[i] = service.LineItemInput{Price: &price, Quantity: &quantity}
	}
	return items
}

func (g *Generator) randomName() (string, string) {
	return g.pick(g.nameFragments.first), g.pick(g.nameFragments.last)
}

func (g *Generator) randomEmail(first, last string) string {
	return fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), g.rand.Intn(100), g.pick(g.nameFragments.domains))
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

type nameFragments struct {
	first   []string
	last    []string
	domains []string
	plans   []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:   []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:    []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains: []string{"example.com", "mail.com", "shop.io", "orders.net"},
		plans:   []string{"free", "plus", "pro"},
	}
}
