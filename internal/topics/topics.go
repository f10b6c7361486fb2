// Package topics holds the fixed editorial topic categories and the tag
// vocabulary used for content performance tracking. Categories come from
// Dr. Latek's content guidelines.
package topics

import (
	"math/rand"
	"strings"
	"time"

	"blogsmith/internal/core"
)

// Tags is the full tag vocabulary. These match the tags stored on blog posts.
var Tags = []string{
	"eye-exams",
	"preventive-care",
	"early-detection",
	"contact-lenses",
	"lens-care",
	"specialty-lenses",
	"pediatrics",
	"children",
	"school-vision",
	"trending",
	"eye-health-tips",
	"dry-eyes",
	"treatments",
	"prevention",
	"eyeglasses",
	"vision-correction",
	"prescriptions",
	"myopia",
	"progression-control",
	"eye-disease",
	"glaucoma",
	"macular-degeneration",
	"cataracts",
	"vision-therapy",
	"exercises",
	"binocular-vision",
}

var defaultCategories = []core.TopicCategory{
	{
		ID:          "comprehensive-eye-exams",
		Name:        "Comprehensive Eye Exams",
		Description: "Importance of regular eye exams, what to expect during an exam, early detection of conditions",
		ExampleSubtopics: []string{
			"Why annual eye exams matter",
			"What happens during a comprehensive eye exam",
			"Early detection of diabetes through eye exams",
			"Eye exams for different age groups",
			"Digital eye strain assessment",
		},
		AssociatedTags: []string{"eye-exams", "preventive-care", "early-detection"},
	},
	{
		ID:          "contact-lenses",
		Name:        "Contact Lenses",
		Description: "Contact lens options, proper care, specialty lenses for unique needs",
		ExampleSubtopics: []string{
			"Daily vs monthly contact lenses",
			"Contact lens care best practices",
			"Scleral lenses for keratoconus",
			"Multifocal contact lenses",
			"Swimming with contact lenses",
			"Colored contact lens safety",
		},
		AssociatedTags: []string{"contact-lenses", "lens-care", "specialty-lenses"},
	},
	{
		ID:          "pediatrics",
		Name:        "Pediatrics",
		Description: "Children's eye health, school vision screenings, early intervention",
		ExampleSubtopics: []string{
			"When should children have their first eye exam",
			"Signs your child needs glasses",
			"School vision screening limitations",
			"Screen time and children's eyes",
			"Learning difficulties and vision",
		},
		AssociatedTags: []string{"pediatrics", "children", "school-vision"},
	},
	{
		ID:          "hot-topics",
		Name:        "Hot Topics",
		Description: "Current trends, seasonal topics, lifestyle eye care",
		ExampleSubtopics: []string{
			"Blue light glasses: do they work?",
			"Eye care in the digital age",
			"Seasonal allergies and your eyes",
			"UV protection for eyes",
			"Eye-friendly nutrition",
			"Sleep and eye health",
		},
		AssociatedTags: []string{"trending", "eye-health-tips", "prevention"},
	},
	{
		ID:          "dry-eyes",
		Name:        "Dry Eyes",
		Description: "Dry eye syndrome causes, symptoms, treatments, and management",
		ExampleSubtopics: []string{
			"Understanding dry eye syndrome",
			"At-home remedies for dry eyes",
			"Medical treatments for chronic dry eye",
			"Meibomian gland dysfunction",
			"Screen use and dry eyes",
			"Dry eyes in contact lens wearers",
		},
		AssociatedTags: []string{"dry-eyes", "treatments", "prevention"},
	},
	{
		ID:          "eyeglasses-vision-correction",
		Name:        "Eyeglasses & Vision Correction",
		Description: "Choosing glasses, understanding prescriptions, lens options",
		ExampleSubtopics: []string{
			"Understanding your eyeglass prescription",
			"Progressive vs bifocal lenses",
			"Blue light filtering lenses",
			"Choosing frames for your face shape",
			"Anti-reflective coatings",
			"When to update your prescription",
		},
		AssociatedTags: []string{"eyeglasses", "vision-correction", "prescriptions"},
	},
	{
		ID:          "myopia-management",
		Name:        "Myopia Management",
		Description: "Childhood myopia, progression control, treatment options",
		ExampleSubtopics: []string{
			"What is myopia and why is it increasing",
			"Orthokeratology for myopia control",
			"Atropine eye drops for myopia",
			"Outdoor time and myopia prevention",
			"MiSight contact lenses",
			"Long-term risks of high myopia",
		},
		AssociatedTags: []string{"myopia", "children", "progression-control"},
	},
	{
		ID:          "disease",
		Name:        "Disease",
		Description: "Eye diseases, symptoms, treatment options, and prevention",
		ExampleSubtopics: []string{
			"Glaucoma: the silent thief of sight",
			"Age-related macular degeneration",
			"Diabetic retinopathy warning signs",
			"Cataracts: causes and treatment",
			"Conjunctivitis types and treatment",
			"Floaters and when to worry",
		},
		AssociatedTags: []string{"eye-disease", "glaucoma", "macular-degeneration", "cataracts"},
	},
	{
		ID:          "vision-therapy",
		Name:        "Vision Therapy",
		Description: "Vision exercises, binocular vision issues, rehabilitation",
		ExampleSubtopics: []string{
			"What is vision therapy",
			"Convergence insufficiency treatment",
			"Vision therapy for reading difficulties",
			"Eye tracking exercises",
			"Post-concussion vision rehabilitation",
			"Amblyopia (lazy eye) treatment",
		},
		AssociatedTags: []string{"vision-therapy", "exercises", "binocular-vision"},
	},
}

// Registry holds an ordered, immutable set of topic categories.
type Registry struct {
	categories []core.TopicCategory
	rng        *rand.Rand
}

// Default returns a registry with the nine standard categories.
func Default() *Registry {
	return NewRegistry(defaultCategories, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRegistry creates a registry from the given categories. The rng drives
// random category and subtopic selection and may be seeded for tests.
func NewRegistry(categories []core.TopicCategory, rng *rand.Rand) *Registry {
	return &Registry{categories: categories, rng: rng}
}

// Categories returns the ordered category list.
func (r *Registry) Categories() []core.TopicCategory {
	return r.categories
}

// PickRandom selects a category uniformly at random.
//
// Selection could eventually be weighted by content performance data to
// favor high-performing topics.
func (r *Registry) PickRandom() core.TopicCategory {
	return r.categories[r.rng.Intn(len(r.categories))]
}

// PickSubtopic selects one of the category's example subtopics at random.
func (r *Registry) PickSubtopic(category core.TopicCategory) string {
	return category.ExampleSubtopics[r.rng.Intn(len(category.ExampleSubtopics))]
}

// Find looks up a category by ID or name, case-insensitively. Lookup order:
// exact ID, exact name, partial name match in either direction, then keyword
// match against the description or any example subtopic. The first category
// in registry order wins.
func (r *Registry) Find(term string) (core.TopicCategory, bool) {
	search := strings.ToLower(strings.TrimSpace(term))
	if search == "" {
		return core.TopicCategory{}, false
	}

	for _, c := range r.categories {
		if strings.ToLower(c.ID) == search {
			return c, true
		}
	}

	for _, c := range r.categories {
		if strings.ToLower(c.Name) == search {
			return c, true
		}
	}

	for _, c := range r.categories {
		name := strings.ToLower(c.Name)
		if strings.Contains(name, search) || strings.Contains(search, name) {
			return c, true
		}
	}

	for _, c := range r.categories {
		if strings.Contains(strings.ToLower(c.Description), search) {
			return c, true
		}
		for _, subtopic := range c.ExampleSubtopics {
			if strings.Contains(strings.ToLower(subtopic), search) {
				return c, true
			}
		}
	}

	return core.TopicCategory{}, false
}

// Names returns the category names in registry order, for error messages
// and endpoint documentation.
func (r *Registry) Names() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}

// FormattedList returns the categories as a "- Name: description" list.
func (r *Registry) FormattedList() string {
	var b strings.Builder
	for i, c := range r.categories {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + c.Name + ": " + c.Description)
	}
	return b.String()
}
