package sentiment

import (
	"strconv"
	"strings"

	"github.com/vidsent/vidsent/internal/core/domain"
)

// Label is the reconciled form of a raw classifier label: either one of the
// three canonical sentiments, or an unknown passthrough value kept for
// debugging. Unknown labels never abort classification.
type Label struct {
	known     bool
	sentiment domain.Sentiment
	raw       string
}

// Known wraps a canonical sentiment.
func Known(s domain.Sentiment) Label {
	return Label{known: true, sentiment: s}
}

// Unknown wraps an unrecognized raw label, lowercased.
func Unknown(raw string) Label {
	return Label{raw: strings.ToLower(raw)}
}

// Sentiment returns the canonical value and whether the label is known.
func (l Label) Sentiment() (domain.Sentiment, bool) {
	return l.sentiment, l.known
}

// String collapses the label to a plain string at the observability
// boundary: the canonical value when known, the lowercase raw label
// otherwise.
func (l Label) String() string {
	if l.known {
		return string(l.sentiment)
	}

	return l.raw
}

// synonyms maps known label spellings, including the Indonesian set the
// training data uses, onto canonical sentiments.
var synonyms = map[string]domain.Sentiment{
	"positive": domain.SentimentPositive,
	"positif":  domain.SentimentPositive,
	"negative": domain.SentimentNegative,
	"negatif":  domain.SentimentNegative,
	"neutral":  domain.SentimentNeutral,
	"netral":   domain.SentimentNeutral,
}

const indexedLabelPrefix = "label_"

// ReconcilerConfig is the immutable configuration for label reconciliation.
type ReconcilerConfig struct {
	// SwapPositiveNegative exchanges the positive and negative assignments
	// as the final step of every reconciliation. Neutral is never affected.
	SwapPositiveNegative bool
}

// Reconciler maps raw classifier labels onto canonical sentiments.
type Reconciler struct {
	cfg ReconcilerConfig
}

// NewReconciler creates a Reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{cfg: cfg}
}

// Reconcile maps one raw label to a Label. Matching order:
//
//  1. direct synonym match, case-insensitive
//  2. indexed labels of the form LABEL_<n>, resolved through the model's
//     own index-to-label table when one is available, then re-matched
//  3. passthrough of the lowercased raw label as Unknown
//
// The polarity swap, when configured, is applied last regardless of which
// path matched.
func (r *Reconciler) Reconcile(rawLabel string, idToLabel map[int]string) Label {
	lower := strings.ToLower(strings.TrimSpace(rawLabel))

	if s, ok := synonyms[lower]; ok {
		return Known(r.swap(s))
	}

	if strings.HasPrefix(lower, indexedLabelPrefix) {
		if label, ok := r.resolveIndexed(lower, idToLabel); ok {
			return label
		}
	}

	return Unknown(lower)
}

func (r *Reconciler) resolveIndexed(lower string, idToLabel map[int]string) (Label, bool) {
	idx, err := strconv.Atoi(strings.TrimPrefix(lower, indexedLabelPrefix))
	if err != nil || idToLabel == nil {
		return Label{}, false
	}

	mapped, ok := idToLabel[idx]
	if !ok {
		return Label{}, false
	}

	mappedLower := strings.ToLower(mapped)
	if s, ok := synonyms[mappedLower]; ok {
		return Known(r.swap(s)), true
	}

	return Unknown(mappedLower), true
}

func (r *Reconciler) swap(s domain.Sentiment) domain.Sentiment {
	if !r.cfg.SwapPositiveNegative {
		return s
	}

	switch s {
	case domain.SentimentPositive:
		return domain.SentimentNegative
	case domain.SentimentNegative:
		return domain.SentimentPositive
	default:
		return s
	}
}
