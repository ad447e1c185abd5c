package listing

import "encoding/json"

// MaxImages caps how many image URLs a listing carries
const MaxImages = 5

// Platform identifies the marketplace a listing was scraped from
type Platform string

const (
	PlatformFinn    Platform = "finn"
	PlatformTise    Platform = "tise"
	PlatformUnknown Platform = "unknown"
)

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns the human readable marketplace name
func (p Platform) DisplayName() string {
	switch p {
	case PlatformFinn:
		return "FINN.no"
	case PlatformTise:
		return "Tise"
	default:
		return "Ukjent"
	}
}

// Listing is the normalized product record extracted from a marketplace page.
// Empty strings and zero mean "unknown"; there are no nil fields.
type Listing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Images      []string `json:"images"`
	Seller      string   `json:"seller"`
	AdID        string   `json:"adId"`
	Platform    Platform `json:"platform"`
	OriginalURL string   `json:"originalUrl"`
}

// MarshalJSON always emits images as an array
func (l Listing) MarshalJSON() ([]byte, error) {
	type alias Listing
	a := alias(l)
	if a.Images == nil {
		a.Images = []string{}
	}
	return json.Marshal(a)
}

// PrimaryImage returns the representative product image or ""
func (l Listing) PrimaryImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}
