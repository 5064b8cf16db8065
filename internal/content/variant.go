package content

// CardBase carries the fields every post card shares.
type CardBase struct {
	ID        string
	Title     string
	Excerpt   string
	Content   string
	Tags      []string
	CreatedAt string
	UpdatedAt string
}

// Variant is the tagged view of a post: each category gets its own type
// carrying only the fields that category actually uses.
type Variant interface {
	VariantCategory() Category
}

type LogPost struct {
	CardBase
}

type TechPost struct {
	CardBase
}

type TravelPost struct {
	CardBase
	Location       string
	ImageURLs      []string
	LegacyImageURL string
}

type ProjectPost struct {
	CardBase
	Emoji  string
	Status ProjectStatus
	Links  []ProjectLink
}

func (LogPost) VariantCategory() Category     { return CategoryLog }
func (TechPost) VariantCategory() Category    { return CategoryTech }
func (TravelPost) VariantCategory() Category  { return CategoryTravel }
func (ProjectPost) VariantCategory() Category { return CategoryProjects }

// CoverImage picks the representative image: the first of imageUrls when the
// list is non-empty, else the legacy single imageUrl, else empty.
func (p TravelPost) CoverImage() string {
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs[0]
	}
	return p.LegacyImageURL
}

// Variant decodes the shared document shape into the typed card for its
// category. Unknown categories fall back to the log card.
func (p Post) Variant() Variant {
	base := CardBase{
		ID:        p.ID,
		Title:     p.Title,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	switch p.Category {
	case CategoryTech:
		return TechPost{CardBase: base}
	case CategoryTravel:
		return TravelPost{
			CardBase:       base,
			Location:       p.Location,
			ImageURLs:      p.ImageURLs,
			LegacyImageURL: p.ImageURL,
		}
	case CategoryProjects:
		return ProjectPost{
			CardBase: base,
			Emoji:    p.Emoji,
			Status:   p.Status,
			Links:    p.Links,
		}
	default:
		return LogPost{CardBase: base}
	}
}
