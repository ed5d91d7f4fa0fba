// Package scoring computes a keyword's opportunity score from its market
// observation, checklists and a resolved score configuration.
package scoring

// Item is the point allocation of one category.
type Item struct {
	Points int    `json:"points" yaml:"points"`
	Max    int    `json:"max" yaml:"max"`
	Label  string `json:"label" yaml:"label"`
}

// Breakdown is the itemised score. Total is the clamped sum of every
// category's points, penalties included.
type Breakdown struct {
	Volume         Item `json:"volume" yaml:"volume"`
	Competitors    Item `json:"competitors" yaml:"competitors"`
	Price          Item `json:"price" yaml:"price"`
	Royalties      Item `json:"royalties" yaml:"royalties"`
	Structural     Item `json:"structural" yaml:"structural"`
	CatalogSignals Item `json:"catalogSignals" yaml:"catalogSignals"`
	Penalties      Item `json:"penalties" yaml:"penalties"`
	Total          int  `json:"total" yaml:"total"`
}

// NamedItem pairs a category name with its allocation.
type NamedItem struct {
	Name string
	Item
}

// Items lists the categories in display order.
func (b Breakdown) Items() []NamedItem {
	return []NamedItem{
		{Name: "volume", Item: b.Volume},
		{Name: "competitors", Item: b.Competitors},
		{Name: "price", Item: b.Price},
		{Name: "royalties", Item: b.Royalties},
		{Name: "structural", Item: b.Structural},
		{Name: "catalogSignals", Item: b.CatalogSignals},
		{Name: "penalties", Item: b.Penalties},
	}
}

// RawSum is the unclamped sum of every category's points.
func (b Breakdown) RawSum() int {
	sum := 0
	for _, item := range b.Items() {
		sum += item.Points
	}
	return sum
}
