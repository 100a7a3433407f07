package features

import "time"

// Feature names, in vector order within each family.
const (
	TF                  = "tf"
	IDF                 = "idf"
	TFIDF               = "tfidf"
	Keyphraseness       = "keyphraseness"
	KeyphrasenessSeen   = "keyphraseness_seen"
	FirstOccurrence     = "first_occurrence"
	LastOccurrence      = "last_occurrence"
	Spread              = "spread"
	Length              = "length"
	NodeDegree          = "node_degree"
	SectionSalience     = "section_salience"
	Generality          = "generality"
	SemanticRelatedness = "semantic_relatedness"
)

// Set toggles the feature families. The zero value enables nothing.
type Set struct {
	Frequency     bool `yaml:"frequency" json:"frequency"`
	Keyphraseness bool `yaml:"keyphraseness" json:"keyphraseness"`
	Positions     bool `yaml:"positions" json:"positions"`
	Length        bool `yaml:"length" json:"length"`
	NodeDegree    bool `yaml:"node_degree" json:"node_degree"`
	Structure     bool `yaml:"structure" json:"structure"`
	Semantic      bool `yaml:"semantic" json:"semantic"`
}

// DefaultSet enables every family that needs no external collaborator.
func DefaultSet() Set {
	return Set{
		Frequency:     true,
		Keyphraseness: true,
		Positions:     true,
		Length:        true,
		NodeDegree:    true,
		Structure:     true,
	}
}

// Names returns the ordered feature names produced under this set.
func (s Set) Names() []string {
	var names []string
	if s.Frequency {
		names = append(names, TF, IDF, TFIDF)
	}
	if s.Keyphraseness {
		names = append(names, Keyphraseness, KeyphrasenessSeen)
	}
	if s.Positions {
		names = append(names, FirstOccurrence, LastOccurrence, Spread)
	}
	if s.Length {
		names = append(names, Length)
	}
	if s.NodeDegree {
		names = append(names, NodeDegree)
	}
	if s.Structure {
		names = append(names, SectionSalience)
	}
	if s.Semantic {
		names = append(names, Generality, SemanticRelatedness)
	}
	return names
}

// NeedsStats reports whether any enabled family reads corpus statistics.
func (s Set) NeedsStats() bool {
	return s.Frequency || s.Keyphraseness
}

// Options configures a Computer.
type Options struct {
	Set Set `yaml:"set" json:"set"`

	// NodeDegreeWindow is the token distance within which two candidates count
	// as co-occurring.
	NodeDegreeWindow int `yaml:"node_degree_window" json:"node_degree_window"`

	// SectionSize is the maximum section size in bytes for section salience.
	SectionSize int `yaml:"section_size" json:"section_size"`

	// SemanticContext is how many of the document's most frequent candidates
	// each candidate is compared against for semantic relatedness.
	SemanticContext int `yaml:"semantic_context" json:"semantic_context"`

	// SemanticTimeout bounds each knowledge-service call.
	SemanticTimeout time.Duration `yaml:"semantic_timeout" json:"semantic_timeout"`
}

// DefaultOptions returns the default computer options.
func DefaultOptions() Options {
	return Options{
		Set:              DefaultSet(),
		NodeDegreeWindow: 10,
		SectionSize:      1500,
		SemanticContext:  10,
		SemanticTimeout:  2 * time.Second,
	}
}
