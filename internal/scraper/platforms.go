package scraper

import "sjsage522/pricepeek/internal/model"

// DefaultPlatforms returns the built-in platform configurations in detection order
func DefaultPlatforms() []PlatformConfig {
	return []PlatformConfig{
		{
			Platform:       model.PlatformAmazon,
			DomainFragment: "amazon.",
			Selectors: Selectors{
				Title:         []string{"#productTitle", "h1.product-title"},
				Price:         []string{".a-price-whole", ".a-price .a-offscreen"},
				OriginalPrice: []string{".a-price.a-text-price .a-offscreen", ".basisPrice .a-offscreen"},
				Rating:        []string{"span.a-icon-alt", `span[data-hook="rating-out-of-text"]`},
				Image:         []string{"#landingImage", "#imgTagWrapperId img"},
			},
			BlockedMarkers: []string{
				"Type the characters you see in this image",
				"api-services-support@amazon.com",
			},
		},
		{
			Platform:       model.PlatformFlipkart,
			DomainFragment: "flipkart.",
			Selectors: Selectors{
				Title:         []string{"span.VU-ZEz", "h1.yhB1nd", "span.B_NuCI"},
				Price:         []string{"div.Nx9bqj", "div._30jeq3", "div._16Jk6d"},
				OriginalPrice: []string{"div.yRaY8j", "div._3I9_wc", "div._3auQ3N"},
				Discount:      []string{"div.UkUFwK", "div._3Ay6sb", "span._2Khksd"},
				Rating:        []string{"div.XQDdHH", "div._3LWZlK", "div._3sQBTj"},
				Image:         []string{"img._396cs4", "img._2r_T1I", "div._1AtVbE img"},
			},
			BlockedMarkers: []string{
				"Are you a human?",
				"Something is not right",
			},
		},
		{
			Platform:       model.PlatformMeesho,
			DomainFragment: "meesho.",
			Selectors: Selectors{
				Title:         []string{"h1", `span[class*="title"]`, `div[class*="product-title"]`},
				Price:         []string{`span[class*="price"]`, `div[class*="price"]`, `h4[class*="price"]`},
				OriginalPrice: []string{`span[class*="original"]`, `span[class*="mrp"]`, "s"},
				Rating:        []string{`span[class*="rating"]`, `div[class*="rating"]`},
				Image:         []string{`img[class*="product"]`, `img[alt*="product"]`, `div[class*="image"] img`},
			},
			BlockedMarkers: []string{
				"Access Denied",
			},
		},
	}
}
