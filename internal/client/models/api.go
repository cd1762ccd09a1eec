// Package models defines the request and response payloads exchanged with
// the ChemTutor API, plus the user snapshot kept with a credential.
package models

import (
	"encoding/json"
	"fmt"
)

// Health is returned by GET health/.
type Health struct {
	Status string `json:"status"`
}

// Compound describes one reaction participant. The balancer and the compound
// lookup use different field names for the same facts, so both are accepted.
type Compound struct {
	Input           string   `json:"input,omitempty"`
	Coeff           int      `json:"coeff,omitempty"`
	SMILES          string   `json:"smiles,omitempty"`
	IUPAC           string   `json:"iupac,omitempty"`
	IUPACName       string   `json:"iupac_name,omitempty"`
	Formula         string   `json:"formula,omitempty"`
	Synonyms        []string `json:"synonyms,omitempty"`
	MolWeight       *float64 `json:"mol_weight,omitempty"`
	MolecularWeight *float64 `json:"molecular_weight,omitempty"`
}

// Name returns the IUPAC name from whichever field carried it.
func (c Compound) Name() string {
	if c.IUPAC != "" {
		return c.IUPAC
	}
	return c.IUPACName
}

// Weight returns the molar mass, if the server knew it.
func (c Compound) Weight() (float64, bool) {
	switch {
	case c.MolWeight != nil:
		return *c.MolWeight, true
	case c.MolecularWeight != nil:
		return *c.MolecularWeight, true
	default:
		return 0, false
	}
}

type ReactionMetadata struct {
	Reactants []Compound `json:"reactants"`
	Products  []Compound `json:"products"`
}

// BalanceResult is returned by POST reactions/balance/. OxidationStates maps
// "reactants"/"products" to one atom-index → charge table per molecule.
type BalanceResult struct {
	Balanced        string                      `json:"balanced"`
	Type            string                      `json:"type"`
	OxidationStates map[string][]map[string]int `json:"oxidation_states,omitempty"`
	Metadata        ReactionMetadata            `json:"metadata"`
}

type BalanceRequest struct {
	Input string `json:"input"`
}

type QuestionRequest struct {
	Question string `json:"question"`
	Category string `json:"category"`
}

// Answer is returned by POST qa/.
type Answer struct {
	Answer  string  `json:"answer"`
	Sources Sources `json:"sources"`
}

// Sources decodes either a JSON array of strings or a single scalar.
type Sources []string

func (s *Sources) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = list
		return nil
	}

	var scalar any
	if err := json.Unmarshal(b, &scalar); err != nil {
		return err
	}
	switch v := scalar.(type) {
	case nil:
		*s = nil
	case string:
		if v == "" {
			*s = nil
		} else {
			*s = Sources{v}
		}
	default:
		*s = Sources{fmt.Sprint(v)}
	}
	return nil
}

type CorrectionRequest struct {
	Statement string `json:"statement"`
}

// Correction is returned by POST correction/.
type Correction struct {
	Success   bool   `json:"success"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Changed   bool   `json:"changed"`
	Error     string `json:"error,omitempty"`
	Details   string `json:"details,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}
