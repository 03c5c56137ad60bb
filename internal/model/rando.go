package model

// SizeClass is one of the three resize targets produced for every rando.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// SizeClasses returns the resize targets in canonical order.
func SizeClasses() []SizeClass {
	return []SizeClass{SizeSmall, SizeMedium, SizeLarge}
}

type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// SizeURLs holds one URL per size class. Empty string means absent
// (map URLs may legitimately be absent, image URLs never are).
type SizeURLs struct {
	Small  string `bson:"small" json:"small"`
	Medium string `bson:"medium" json:"medium"`
	Large  string `bson:"large" json:"large"`
}

func (u SizeURLs) ForSize(sc SizeClass) string {
	switch sc {
	case SizeSmall:
		return u.Small
	case SizeMedium:
		return u.Medium
	case SizeLarge:
		return u.Large
	}
	return ""
}

func (u *SizeURLs) SetForSize(sc SizeClass, url string) {
	switch sc {
	case SizeSmall:
		u.Small = url
	case SizeMedium:
		u.Medium = url
	case SizeLarge:
		u.Large = url
	}
}

// ImagePaths are the four staging-relative paths derived from one rando id.
type ImagePaths struct {
	Origin string
	Small  string
	Medium string
	Large  string
}

func (p ImagePaths) ForSize(sc SizeClass) string {
	switch sc {
	case SizeSmall:
		return p.Small
	case SizeMedium:
		return p.Medium
	case SizeLarge:
		return p.Large
	}
	return p.Origin
}

// All returns origin plus the three sized paths.
func (p ImagePaths) All() []string {
	return []string{p.Origin, p.Small, p.Medium, p.Large}
}

// Owner is the already-authenticated account a rando is created for.
type Owner struct {
	Email string
	IP    string
}

// Rando is the persisted photo post. The same document is inserted into
// the rando collection and pushed onto the owner's out list; the report
// and bonAppetit counters are mutated later by the comment flows, never
// by the upload pipeline.
type Rando struct {
	RandoID      string    `bson:"randoId" json:"randoId"`
	OwnerEmail   string    `bson:"email" json:"email"`
	Creation     int64     `bson:"creation" json:"creation"` // epoch millis
	Location     *Location `bson:"location,omitempty" json:"location,omitempty"`
	ImageURL     string    `bson:"imageURL" json:"imageURL"`
	ImageSizeURL SizeURLs  `bson:"imageSizeURL" json:"imageSizeURL"`
	MapURL       string    `bson:"mapURL,omitempty" json:"mapURL,omitempty"`
	MapSizeURL   SizeURLs  `bson:"mapSizeURL,omitempty" json:"mapSizeURL,omitempty"`
	IP           string    `bson:"ip" json:"ip"`
	Tags         []string  `bson:"tags" json:"tags"`
	Report       int       `bson:"report" json:"report"`
	BonAppetit   int       `bson:"bonAppetit" json:"bonAppetit"`
	Deleted      int       `bson:"delete" json:"delete"`
}
