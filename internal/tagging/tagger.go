package tagging

import (
	"strings"

	"github.com/amishk599/pljobs/internal/model"
)

// Tagger applies every taxonomy to one posting.
type Tagger struct {
	Contracts Contracts
	Benefits  Taxonomy
	Languages Taxonomy
	Levels    Levels
	WorkTypes Taxonomy
}

// WorkMode picks the explicit work-mode field, or the mode guessed from the
// location when the field is missing. Bullet separators become commas.
func WorkMode(explicit, fallback string) string {
	mode := strings.TrimSpace(explicit)
	if mode == "" || mode == "N/A" {
		mode = fallback
	}
	return strings.ReplaceAll(mode, " • ", ",")
}

// Tag returns all boolean columns for a posting. Text fields should already
// be translated. fallbackWork is the location resolver's guess.
func (t Tagger) Tag(raw model.RawPosting, fallbackWork string) map[string]bool {
	flags := make(map[string]bool)
	merge(flags, t.Benefits.Tag(raw.Benefits))
	merge(flags, t.Contracts.Tag(raw.ContractType))
	merge(flags, t.Languages.Tag(raw.JobTitle, raw.Technologies, raw.Responsibilities, raw.Requirements, raw.Offering))
	merge(flags, t.Levels.Tag(raw.ExperienceLevel))
	merge(flags, t.WorkTypes.Tag(WorkMode(raw.WorkMode, fallbackWork)))
	return flags
}

func merge(dst, src map[string]bool) {
	for k, v := range src {
		dst[k] = v
	}
}
