package classify

import (
	"strings"

	"burnplan/internal/core"
)

// Category is a spending category key.
type Category string

const (
	CategoryGroceries     Category = "groceries"
	CategoryRestaurants   Category = "restaurants"
	CategoryTransport     Category = "transport"
	CategoryFuel          Category = "fuel"
	CategoryShopping      Category = "shopping"
	CategoryHealth        Category = "health"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryTravel        Category = "travel"
	CategorySubscriptions Category = "subscriptions"
	CategoryCash          Category = "cash"
	CategoryOther         Category = "other"
)

// keywordGroup maps description keywords to a category. Groups are checked
// in order and the first match wins; order is a contract, not a heuristic.
type keywordGroup struct {
	category Category
	keywords []string
}

var keywordGroups = []keywordGroup{
	{CategorySubscriptions, []string{"netflix", "spotify", "youtube premium", "subscription", "patreon"}},
	{CategoryGroceries, []string{"supermarket", "grocery", "market", "lidl", "aldi", "carrefour"}},
	{CategoryRestaurants, []string{"restaurant", "cafe", "coffee", "pizza", "mcdonald", "burger"}},
	{CategoryFuel, []string{"fuel", "petrol", "gas station", "shell", "bp "}},
	{CategoryTransport, []string{"uber", "taxi", "bolt", "metro", "bus ticket", "train"}},
	{CategoryHealth, []string{"pharmacy", "clinic", "hospital", "dental", "doctor"}},
	{CategoryUtilities, []string{"electric", "water supply", "internet", "mobile top-up", "utility"}},
	{CategoryEntertainment, []string{"cinema", "theatre", "concert", "steam", "playstation"}},
	{CategoryTravel, []string{"hotel", "airline", "booking.com", "airbnb", "flight"}},
}

// mccRange maps a merchant category code interval to a category. Checked
// after keywords, first containing range wins.
type mccRange struct {
	lo, hi   int
	category Category
}

var mccRanges = []mccRange{
	{3000, 3999, CategoryTravel},   // airlines, car rental, lodging
	{4000, 4799, CategoryTransport},
	{4800, 4999, CategoryUtilities},
	{5411, 5499, CategoryGroceries},
	{5541, 5542, CategoryFuel},
	{5611, 5699, CategoryShopping},
	{5811, 5814, CategoryRestaurants},
	{5912, 5912, CategoryHealth},
	{5940, 5999, CategoryShopping},
	{6010, 6011, CategoryCash},
	{7011, 7011, CategoryTravel},
	{7800, 7999, CategoryEntertainment},
	{8011, 8099, CategoryHealth},
}

// ResolveCategory picks the category for a transaction. Resolution order is
// a hard contract: manual override, then description keywords, then MCC
// ranges, then the fallback. First match wins, never best match.
func ResolveCategory(tx core.Transaction) Category {
	if tx.Category != "" {
		return Category(tx.Category)
	}

	desc := strings.ToLower(tx.Description)
	for _, g := range keywordGroups {
		for _, kw := range g.keywords {
			if strings.Contains(desc, kw) {
				return g.category
			}
		}
	}

	for _, r := range mccRanges {
		if tx.MCC >= r.lo && tx.MCC <= r.hi {
			return r.category
		}
	}

	return CategoryOther
}
