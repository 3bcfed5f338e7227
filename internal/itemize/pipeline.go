package itemize

import "fmt"

// Profile selects the sentinel written into Unit when no weight is found.
type Profile struct {
	Name     string
	UnitNone string
}

var (
	ProfileDefault = Profile{Name: "default", UnitNone: UnitNone}
	ProfileLegacy  = Profile{Name: "legacy", UnitNone: UnitNoneLegacy}
)

// ProfileByName looks up a built-in profile. An empty name is the default.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", ProfileDefault.Name:
		return ProfileDefault, nil
	case ProfileLegacy.Name:
		return ProfileLegacy, nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q (want %q or %q)", name, ProfileDefault.Name, ProfileLegacy.Name)
	}
}

// Config tunes a Pipeline. Zero fields fall back to the defaults.
type Config struct {
	Profile        Profile
	GroupThreshold float64
	Normalizer     *Normalizer
	Classifier     Classifier
	Pairer         Pairer
}

// Result is everything one pipeline run produced. It is built fresh by Run
// and never modified afterwards.
type Result struct {
	Lines      []RecognizedLine `json:"lines"`
	Groups     []LineGroup      `json:"groups"`
	Candidates []RecognizedLine `json:"candidates"`
	Tokens     []string         `json:"tokens"`
	Names      []string         `json:"names"`
	Quantities []string         `json:"quantities"`
	Items      []LineItem       `json:"items"`
}

// Pipeline runs collection, selection, normalization, classification,
// field extraction and pairing. It holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	profile    Profile
	threshold  float64
	normalizer *Normalizer
	classifier Classifier
	pairer     Pairer
}

// New creates a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	if cfg.Profile.UnitNone == "" {
		cfg.Profile = ProfileDefault
	}
	if cfg.GroupThreshold <= 0 {
		cfg.GroupThreshold = DefaultGroupThreshold
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = NewNormalizer(Brands)
	}
	if cfg.Classifier == nil {
		cfg.Classifier = LeadingDigit{}
	}
	if cfg.Pairer == nil {
		cfg.Pairer = Positional{}
	}
	return &Pipeline{
		profile:    cfg.Profile,
		threshold:  cfg.GroupThreshold,
		normalizer: cfg.Normalizer,
		classifier: cfg.Classifier,
		pairer:     cfg.Pairer,
	}
}

// Profile returns the profile the pipeline was built with.
func (p *Pipeline) Profile() Profile {
	return p.profile
}

// Run processes one OCR pass. It never fails: missing or unusable input
// yields an empty Result.
func (p *Pipeline) Run(lines []RecognizedLine) Result {
	groups, kept := Collect(lines, p.threshold)
	candidates := SelectQuantityLines(kept)

	tokens := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if t := p.normalizer.Normalize(c.Text); t != "" {
			tokens = append(tokens, t)
		}
	}

	names, quantities := p.classifier.Classify(tokens)

	extracted := make([]LineItem, 0, len(names))
	for _, n := range names {
		extracted = append(extracted, ExtractFields(n, p.profile.UnitNone))
	}

	return Result{
		Lines:      kept,
		Groups:     groups,
		Candidates: candidates,
		Tokens:     tokens,
		Names:      names,
		Quantities: quantities,
		Items:      p.pairer.Pair(extracted, quantities),
	}
}
