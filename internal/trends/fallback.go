package trends

import (
	"math/rand"

	"github.com/futurizm/futurizm/internal/model"
)

// fallbackCatalog is the local category/topic table used when the trends
// feed is unavailable. The first four entries double as padding for a
// thin feed.
var fallbackCatalog = []model.TrendingCategory{
	{Name: "Politics", Topics: []string{"Government Policy", "Election Update", "Congress Action"}},
	{Name: "Sports", Topics: []string{"Game Preview", "Player Trade", "League News"}},
	{Name: "Business", Topics: []string{"Market Open", "Tech Earnings", "Fed Decision"}},
	{Name: "Science", Topics: []string{"Space Launch", "AI Breakthrough", "Climate Report"}},
	{Name: "Technology", Topics: []string{"Product Launch", "Software Update", "Cybersecurity Threat"}},
	{Name: "AI & Machine Learning", Topics: []string{"Model Release", "Regulation News", "Industry Adoption"}},
	{Name: "Cryptocurrency", Topics: []string{"Bitcoin Movement", "Altcoin Rally", "Regulatory Shift"}},
	{Name: "Social Media", Topics: []string{"Platform Update", "Viral Trend", "Creator Economy"}},
	{Name: "Stock Market", Topics: []string{"Index Movement", "Sector Rotation", "Options Expiry"}},
	{Name: "Real Estate", Topics: []string{"Housing Data", "Mortgage Rates", "Commercial Trends"}},
	{Name: "Banking", Topics: []string{"Interest Rates", "Lending Trends", "Bank Earnings"}},
	{Name: "Commodities", Topics: []string{"Oil Prices", "Gold Movement", "Agricultural Futures"}},
	{Name: "Entertainment", Topics: []string{"Movie Release", "Award Show", "Celebrity News"}},
	{Name: "Gaming", Topics: []string{"Game Launch", "Esports Tournament", "Console Update"}},
	{Name: "Music", Topics: []string{"Album Drop", "Tour Announcement", "Streaming Records"}},
	{Name: "Streaming", Topics: []string{"New Series", "Subscriber Growth", "Platform Wars"}},
	{Name: "Healthcare", Topics: []string{"Drug Approval", "Hospital News", "Insurance Policy"}},
	{Name: "Fitness", Topics: []string{"Workout Trends", "Supplement News", "Athlete Performance"}},
	{Name: "Mental Health", Topics: []string{"Awareness Campaign", "Treatment Innovation", "Workplace Wellness"}},
	{Name: "Nutrition", Topics: []string{"Diet Trends", "Food Safety", "Supplement Research"}},
	{Name: "Climate", Topics: []string{"Weather Event", "Policy Change", "Sustainability Report"}},
	{Name: "Energy", Topics: []string{"Oil Production", "Renewable Growth", "Grid Update"}},
	{Name: "Environment", Topics: []string{"Conservation Effort", "Pollution Report", "Wildlife News"}},
	{Name: "Education", Topics: []string{"School Policy", "Test Results", "University News"}},
	{Name: "Crime", Topics: []string{"Investigation Update", "Court Ruling", "Policy Change"}},
	{Name: "Transportation", Topics: []string{"Traffic Update", "Transit News", "Aviation Trend"}},
	{Name: "Housing", Topics: []string{"Rent Trends", "Construction Data", "Urban Development"}},
	{Name: "World News", Topics: []string{"Diplomatic Meeting", "Trade Deal", "Conflict Update"}},
	{Name: "Asia Pacific", Topics: []string{"China Markets", "Japan Policy", "Regional Trade"}},
	{Name: "Europe", Topics: []string{"EU Decision", "Brexit Impact", "Economic Data"}},
	{Name: "Middle East", Topics: []string{"Oil News", "Regional Politics", "Economic Reform"}},
	{Name: "Space", Topics: []string{"Satellite Launch", "NASA Update", "Private Venture"}},
	{Name: "Biotech", Topics: []string{"Clinical Trial", "Gene Therapy", "FDA Decision"}},
	{Name: "Robotics", Topics: []string{"Industrial Deployment", "Consumer Product", "Automation Trend"}},
	{Name: "Quantum Computing", Topics: []string{"Research Breakthrough", "Industry Application", "Investment News"}},
}

// Fallbacks draws n random categories from the catalog using the given
// randomness source. Injecting the source keeps fallback selection
// deterministic under test.
func Fallbacks(rng *rand.Rand, n int) []model.TrendingCategory {
	if n <= 0 || n > len(fallbackCatalog) {
		n = categoriesPerCycle
	}

	shuffled := make([]model.TrendingCategory, len(fallbackCatalog))
	copy(shuffled, fallbackCatalog)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n]
}
