package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"flowcore/pkg/domain"
)

// materialRecord is one row of the bundled property database. Numeric
// properties stay as strings; an absent property is simply missing from the
// map and its element is not emitted.
type materialRecord struct {
	name            string
	chemicalFormula string
	phase           domain.MaterialPhase
	props           map[string]string
}

type materialDB struct {
	records map[string]materialRecord
	order   []string
}

func loadMaterialDB(data []byte) (*materialDB, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse material database: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("material database holds no materials")
	}
	header := rows[0]
	db := &materialDB{records: make(map[string]materialRecord, len(rows)-1)}
	for _, row := range rows[1:] {
		rec := materialRecord{props: make(map[string]string)}
		for i, col := range header {
			if i >= len(row) || row[i] == "" {
				continue
			}
			switch col {
			case "name":
				rec.name = row[i]
			case "chemicalFormula":
				rec.chemicalFormula = row[i]
			case "phase":
				rec.phase = domain.MaterialPhase(row[i])
			default:
				rec.props[col] = row[i]
			}
		}
		if rec.name == "" {
			return nil, fmt.Errorf("material database row lacks a name")
		}
		db.records[rec.name] = rec
		db.order = append(db.order, rec.name)
	}
	return db, nil
}

// MaterialLibrary lists the materials available in the bundled property
// database, in database order. IDs are zero: library entries are not yet
// part of the case.
func (s *Store) MaterialLibrary() []domain.Material {
	out := make([]domain.Material, 0, len(s.mdb.order))
	for _, name := range s.mdb.order {
		rec := s.mdb.records[name]
		out = append(out, domain.Material{
			Name:            rec.name,
			ChemicalFormula: rec.chemicalFormula,
			Phase:           rec.phase,
		})
	}
	return out
}

// Materials lists the configured materials in document order.
func (s *Store) Materials() []domain.Material {
	elements := s.doc.FindElements(".//materials/material")
	out := make([]domain.Material, 0, len(elements))
	for _, e := range elements {
		id, _ := strconv.Atoi(e.SelectAttrValue("mid", "0"))
		out = append(out, domain.Material{
			ID:              id,
			Name:            childText(e, "name"),
			ChemicalFormula: childText(e, "chemicalFormula"),
			Phase:           domain.MaterialPhase(childText(e, "phase")),
		})
	}
	return out
}

// AddMaterial instantiates a material subtree from the property database and
// appends it under the materials scope, allocating the smallest free id.
func (s *Store) AddMaterial(name string) (int, error) {
	rec, ok := s.mdb.records[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownMaterial, name)
	}

	materials := s.doc.FindElement(".//materials")
	if materials == nil {
		return 0, fmt.Errorf("%w: .//materials", domain.ErrPathResolution)
	}
	if childWithName(materials, "material", name) != nil {
		err := domain.Validation(domain.CodeAlreadyExists, ".//materials", fmt.Sprintf("material %q", name))
		s.recordOutcome(err)
		return 0, err
	}

	id, ok := smallestFreeID(usedAttrIDs(materials, "material", "mid"), domain.MaterialMaxID)
	if !ok {
		err := domain.Validation(domain.CodeCapacity, ".//materials", fmt.Sprintf("no free id below %d", domain.MaterialMaxID))
		s.recordOutcome(err)
		return 0, err
	}

	material := materials.CreateElement("material")
	material.CreateAttr("mid", strconv.Itoa(id))
	material.CreateElement("name").SetText(rec.name)
	if rec.chemicalFormula != "" {
		material.CreateElement("chemicalFormula").SetText(rec.chemicalFormula)
	}
	material.CreateElement("phase").SetText(string(rec.phase))
	addProp(material, "molecularWeight", rec, "molecularWeight")
	addProp(material, "absorptionCoefficient", rec, "absorptionCoefficient")
	addProp(material, "surfaceTension", rec, "surfaceTension")
	addProp(material, "saturationPressure", rec, "saturationPressure")
	addProp(material, "emissivity", rec, "emissivity")

	density := material.CreateElement("density")
	density.CreateElement("specification").SetText("constant")
	addProp(density, "constant", rec, "density")

	specificHeat := material.CreateElement("specificHeat")
	specificHeat.CreateElement("specification").SetText("constant")
	addProp(specificHeat, "constant", rec, "specificHeat")
	specificHeat.CreateElement("polynomial")

	if _, ok := rec.props["viscosity"]; ok {
		viscosity := material.CreateElement("viscosity")
		viscosity.CreateElement("specification").SetText("constant")
		addProp(viscosity, "constant", rec, "viscosity")
		viscosity.CreateElement("polynomial")
		_, hasCoeff := rec.props["sutherlandCoefficient"]
		_, hasTemp := rec.props["sutherlandTemperature"]
		if rec.phase == domain.PhaseGas && hasCoeff && hasTemp {
			sutherland := viscosity.CreateElement("sutherland")
			addProp(sutherland, "coefficient", rec, "sutherlandCoefficient")
			addProp(sutherland, "temperature", rec, "sutherlandTemperature")
		}
	}

	conductivity := material.CreateElement("thermalConductivity")
	conductivity.CreateElement("specification").SetText("constant")
	addProp(conductivity, "constant", rec, "thermalConductivity")
	conductivity.CreateElement("polynomial")

	s.markMutated()
	if err := s.revalidate(); err != nil {
		return 0, err
	}
	return id, nil
}

// RemoveMaterial detaches a material unless a region still references its id
// or it is the last material in the case.
func (s *Store) RemoveMaterial(name string) error {
	materials := s.doc.FindElement(".//materials")
	if materials == nil {
		return fmt.Errorf("%w: .//materials", domain.ErrPathResolution)
	}
	material := childWithName(materials, "material", name)
	if material == nil {
		return domain.NotFoundError{Kind: domain.EntityMaterial, Name: name}
	}

	mid := material.SelectAttrValue("mid", "")
	for _, ref := range s.doc.FindElements(".//regions/region/material") {
		if ref.Text() == mid {
			err := domain.Validation(domain.CodeReferenced, ".//materials", fmt.Sprintf("material %q referenced by a region", name))
			s.recordOutcome(err)
			return err
		}
	}
	if len(materials.SelectElements("material")) == 1 {
		err := domain.Validation(domain.CodeEmpty, ".//materials", "at least one material must remain")
		s.recordOutcome(err)
		return err
	}

	materials.RemoveChild(material)
	s.markMutated()
	return s.revalidate()
}

// addProp emits a property element only when the database row carries it.
func addProp(parent *etree.Element, tag string, rec materialRecord, key string) {
	if value, ok := rec.props[key]; ok {
		parent.CreateElement(tag).SetText(value)
	}
}
