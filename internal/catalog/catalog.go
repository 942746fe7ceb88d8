package catalog

import "topup-service/internal/models"

// Catalog is the immutable in-process service catalog. It is loaded once at
// start-up and injected into whatever needs it; lookups never mutate it.
type Catalog struct {
	services   []models.Service
	byID       map[string]int
	byName     map[string]int
	categories []string
}

// New builds a catalog from an ordered service list. Category order follows
// first appearance in the list.
func New(services []models.Service) *Catalog {
	c := &Catalog{
		services: services,
		byID:     make(map[string]int, len(services)),
		byName:   make(map[string]int, len(services)),
	}

	seen := make(map[string]bool)
	for i, svc := range services {
		c.byID[svc.ID] = i
		c.byName[svc.Name] = i
		if !seen[svc.Category] {
			seen[svc.Category] = true
			c.categories = append(c.categories, svc.Category)
		}
	}

	return c
}

// Services returns the full ordered service list.
func (c *Catalog) Services() []models.Service {
	out := make([]models.Service, len(c.services))
	copy(out, c.services)
	return out
}

// Categories returns the derived category labels in catalog order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// ByID looks up a service by its stable identifier.
func (c *Catalog) ByID(id string) (*models.Service, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	svc := c.services[i]
	return &svc, true
}

// ByName looks up a service by display name.
func (c *Catalog) ByName(name string) (*models.Service, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	svc := c.services[i]
	return &svc, true
}

var baseFeatures = []string{"Instant Delivery", "For Indian IDs Only", "24/7 Support", "Secure Payment"}

func features(extra ...string) []string {
	return append(append([]string{}, baseFeatures...), extra...)
}

func diamondPack(id, name, size, category string, price int64, extra ...string) models.Service {
	return models.Service{
		ID:          id,
		Name:        name,
		Description: size + " diamond pack for Mobile Legends",
		Price:       price,
		Category:    category,
		Features:    features(extra...),
	}
}

// Default returns the production catalog.
func Default() *Catalog {
	return New([]models.Service{
		diamondPack("diamonds-5", "5 Diamonds", "Small", "Small Packs", 15),
		diamondPack("diamonds-11", "11 Diamonds", "Small", "Small Packs", 20),
		diamondPack("diamonds-22", "22 Diamonds", "Small", "Small Packs", 40),
		diamondPack("diamonds-55", "55 Diamonds", "Small", "Small Packs", 80),
		diamondPack("diamonds-86", "86 Diamonds", "Small", "Small Packs", 110),
		diamondPack("diamonds-110", "110 Diamonds", "Normal", "Normal Packs", 160, "Popular Choice"),
		diamondPack("diamonds-172", "172 Diamonds", "Normal", "Normal Packs", 220),
		diamondPack("diamonds-257", "257 Diamonds", "Normal", "Normal Packs", 320),
		diamondPack("diamonds-284", "284 Diamonds", "Normal", "Normal Packs", 350),
		diamondPack("diamonds-343", "343 Diamonds", "Normal", "Normal Packs", 430),
		diamondPack("diamonds-429", "429 Diamonds", "Normal", "Normal Packs", 540),
		diamondPack("diamonds-514", "514 Diamonds", "Normal", "Normal Packs", 640),
		diamondPack("diamonds-565", "565 Diamonds", "Normal", "Normal Packs", 700),
		diamondPack("diamonds-600", "600 Diamonds", "Normal", "Normal Packs", 750),
		diamondPack("diamonds-706", "706 Diamonds", "Normal", "Normal Packs", 850),
		diamondPack("diamonds-792", "792 Diamonds", "Normal", "Normal Packs", 960),
		diamondPack("diamonds-878", "878 Diamonds", "Normal", "Normal Packs", 1070),
		diamondPack("diamonds-963", "963 Diamonds", "Normal", "Normal Packs", 1180),
		diamondPack("diamonds-1049", "1049 Diamonds", "Big", "Big Packs", 1300, "Best Value"),
		diamondPack("diamonds-1135", "1135 Diamonds", "Big", "Big Packs", 1400),
		diamondPack("diamonds-1220", "1220 Diamonds", "Big", "Big Packs", 1500),
		diamondPack("diamonds-1412", "1412 Diamonds", "Big", "Big Packs", 1700),
		diamondPack("diamonds-2195", "2195 Diamonds", "Big", "Big Packs", 2500),
		diamondPack("diamonds-2901", "2901 Diamonds", "Big", "Big Packs", 3300),
		diamondPack("diamonds-3688", "3688 Diamonds", "Big", "Big Packs", 4200),
		diamondPack("diamonds-4394", "4394 Diamonds", "Big", "Big Packs", 5000),
		diamondPack("diamonds-5100", "5100 Diamonds", "Big", "Big Packs", 5800),
		diamondPack("diamonds-5532", "5532 Diamonds", "Big", "Big Packs", 6200),
		{
			ID:          "weekly-pass",
			Name:        "Weekly Pass",
			Description: "Weekly Pass for Mobile Legends",
			Price:       140,
			Category:    "Passes",
			Features:    []string{"Weekly Benefits", "For Indian IDs Only", "24/7 Support", "Secure Payment"},
		},
		{
			ID:          "twilight-pass",
			Name:        "Twilight Pass",
			Description: "Twilight Pass for Mobile Legends",
			Price:       700,
			Category:    "Passes",
			Features:    []string{"Premium Benefits", "For Indian IDs Only", "24/7 Support", "Secure Payment"},
		},
	})
}
