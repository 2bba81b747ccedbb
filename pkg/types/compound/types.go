// Package compound defines the compound-dataset data types shared across
// every layer of toxscope. No domain logic lives here — only plain data
// types that are safe to import from any layer without creating circular
// dependencies.
package compound

// ─────────────────────────────────────────────────────────────────────────────
// DescriptorKey — molecular descriptor identifiers
// ─────────────────────────────────────────────────────────────────────────────

// DescriptorKey identifies one of the numeric molecular descriptors carried
// by every compound record and by the population statistics resource.
type DescriptorKey string

const (
	// DescMolWeight is the molecular weight in g/mol.
	DescMolWeight DescriptorKey = "mol_weight"

	// DescLogP is the calculated octanol-water partition coefficient.
	DescLogP DescriptorKey = "logp"

	// DescLogD is the distribution coefficient at physiological pH.
	DescLogD DescriptorKey = "logd"

	// DescTPSA is the topological polar surface area in Å².
	DescTPSA DescriptorKey = "tpsa"

	// DescHBondDonors is the hydrogen-bond donor count.
	DescHBondDonors DescriptorKey = "hbd"

	// DescHBondAcceptors is the hydrogen-bond acceptor count.
	DescHBondAcceptors DescriptorKey = "hba"

	// DescFractionSP3 is the fraction of sp3-hybridised carbons.
	DescFractionSP3 DescriptorKey = "fsp3"

	// DescQED is the quantitative estimate of drug-likeness, 0..1.
	DescQED DescriptorKey = "qed"

	// DescSyntheticAccessibility is the synthetic accessibility score, 1..10.
	DescSyntheticAccessibility DescriptorKey = "sa_score"
)

// DescriptorKeys returns the nine descriptor keys in their canonical display
// order. The returned slice is a fresh copy; callers may reorder it freely.
func DescriptorKeys() []DescriptorKey {
	return []DescriptorKey{
		DescMolWeight,
		DescLogP,
		DescLogD,
		DescTPSA,
		DescHBondDonors,
		DescHBondAcceptors,
		DescFractionSP3,
		DescQED,
		DescSyntheticAccessibility,
	}
}

// DescriptorLabel maps a descriptor key to its human-readable display label.
// Unknown keys are returned unchanged so new dataset columns degrade
// gracefully in the UI rather than disappearing.
func DescriptorLabel(key DescriptorKey) string {
	switch key {
	case DescMolWeight:
		return "Molecular weight"
	case DescLogP:
		return "logP"
	case DescLogD:
		return "logD"
	case DescTPSA:
		return "Topological PSA"
	case DescHBondDonors:
		return "H-bond donors"
	case DescHBondAcceptors:
		return "H-bond acceptors"
	case DescFractionSP3:
		return "Fraction sp3 carbons"
	case DescQED:
		return "QED"
	case DescSyntheticAccessibility:
		return "Synthetic accessibility"
	default:
		return string(key)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// EndpointKey — biological endpoint identifiers
// ─────────────────────────────────────────────────────────────────────────────

// EndpointKey identifies one of the nine biological endpoints for which each
// compound carries dose-response series and lethal-dose thresholds.
type EndpointKey string

const (
	// EndpointBioactivity is the primary bioactivity readout. It carries
	// dose-response data like every other endpoint but is excluded from the
	// aggregate safety margin.
	EndpointBioactivity EndpointKey = "bioactivity"

	EndpointCellCount              EndpointKey = "cell_count"
	EndpointROS                    EndpointKey = "ros"
	EndpointMembranePermeability   EndpointKey = "membrane_permeability"
	EndpointMitochondrialPotential EndpointKey = "mitochondrial_potential"
	EndpointDNADamage              EndpointKey = "dna_damage"
	EndpointApoptosis              EndpointKey = "apoptosis"
	EndpointCalciumFlux            EndpointKey = "calcium_flux"
	EndpointATPDepletion           EndpointKey = "atp_depletion"
)

// AllEndpoints returns all nine endpoint keys, the bioactivity endpoint first.
func AllEndpoints() []EndpointKey {
	return append([]EndpointKey{EndpointBioactivity}, ToxicityEndpoints()...)
}

// ToxicityEndpoints returns the fixed set of eight toxicity endpoints that
// participate in the aggregate safety margin.
func ToxicityEndpoints() []EndpointKey {
	return []EndpointKey{
		EndpointCellCount,
		EndpointROS,
		EndpointMembranePermeability,
		EndpointMitochondrialPotential,
		EndpointDNADamage,
		EndpointApoptosis,
		EndpointCalciumFlux,
		EndpointATPDepletion,
	}
}

// EndpointLabel maps an endpoint key to its display label.
func EndpointLabel(key EndpointKey) string {
	switch key {
	case EndpointBioactivity:
		return "Bioactivity"
	case EndpointCellCount:
		return "Cell count"
	case EndpointROS:
		return "Reactive oxygen species"
	case EndpointMembranePermeability:
		return "Membrane permeability"
	case EndpointMitochondrialPotential:
		return "Mitochondrial potential"
	case EndpointDNADamage:
		return "DNA damage"
	case EndpointApoptosis:
		return "Apoptosis"
	case EndpointCalciumFlux:
		return "Calcium flux"
	case EndpointATPDepletion:
		return "ATP depletion"
	default:
		return string(key)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Compound — the immutable dataset record
// ─────────────────────────────────────────────────────────────────────────────

// Endpoint carries the dose-response prediction for one biological endpoint:
// four parallel numeric-series-encoded string fields plus three scalar
// lethal-dose thresholds. Series fields use the delimited encoding understood
// by the numeric series parser; threshold pointers are nil when the model
// produced no estimate.
type Endpoint struct {
	Mean  string `json:"mean"`
	SD    string `json:"sd"`
	Lower string `json:"lower"`
	Upper string `json:"upper"`

	LD20 *float64 `json:"ld20,omitempty"`
	LD50 *float64 `json:"ld50,omitempty"`
	LD80 *float64 `json:"ld80,omitempty"`
}

// Compound is one record of the exploration dataset. Records are immutable
// once loaded; all derived values (margins, filter membership, embedding
// decoration) are computed outside the record and never written back.
//
// Name is the stable join key used by the embedding id list and the selection
// set; ID is the dataset-internal row identifier.
type Compound struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Descriptors holds the numeric molecular descriptors present on this
	// record. A key absent from the map means the value is unavailable, which
	// range filters treat as non-matching.
	Descriptors map[DescriptorKey]float64 `json:"descriptors"`

	// Doses is the ordered dose grid shared by all endpoint series, in the
	// delimited numeric-series encoding.
	Doses string `json:"doses"`

	// Endpoints maps each biological endpoint to its prediction block.
	Endpoints map[EndpointKey]Endpoint `json:"endpoints"`

	// SMILES and InChI are the two structure notations accepted by the
	// external structure renderer. Either or both may be empty.
	SMILES string `json:"smiles,omitempty"`
	InChI  string `json:"inchi,omitempty"`
}

// Descriptor returns the value for key and whether it is present.
func (c *Compound) Descriptor(key DescriptorKey) (float64, bool) {
	v, ok := c.Descriptors[key]
	return v, ok
}

// DescriptorStats is the per-descriptor population summary, loaded once and
// immutable. It seeds range-filter defaults and normalises histogram bars.
type DescriptorStats struct {
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// StatsMap maps descriptor keys to their population statistics.
type StatsMap map[DescriptorKey]DescriptorStats
