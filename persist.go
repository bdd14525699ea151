package cadence

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"gopkg.in/yaml.v3"
)

// GraphDoc is the editor-facing serialization of a machine: states,
// transitions, and parameters under the exact field names graph tooling
// reads and writes. JSON is the interchange format; the YAML rendition
// carries the same names for hand-authored graphs.
type GraphDoc struct {
	States      []StateDoc      `json:"states" yaml:"states"`
	Transitions []TransitionDoc `json:"transitions" yaml:"transitions"`
	Parameters  []ParameterDoc  `json:"parameters" yaml:"parameters"`
}

// StateDoc is one graph node.
type StateDoc struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Position      PointDoc `json:"position" yaml:"position"`
	AnimationName string   `json:"animationName" yaml:"animationName"`
	Speed         float64  `json:"speed" yaml:"speed"`
	Loop          bool     `json:"loop" yaml:"loop"`
}

// PointDoc is an editor canvas coordinate.
type PointDoc struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// TransitionDoc is one graph edge. Priority records evaluation order;
// lower evaluates first.
type TransitionDoc struct {
	ID          string         `json:"id" yaml:"id"`
	FromStateID string         `json:"fromStateId" yaml:"fromStateId"`
	ToStateID   string         `json:"toStateId" yaml:"toStateId"`
	Conditions  []ConditionDoc `json:"conditions" yaml:"conditions"`
	Duration    float64        `json:"duration" yaml:"duration"`
	Priority    int            `json:"priority" yaml:"priority"`
}

// ConditionDoc is one guard clause. Value is a bool for bool and trigger
// parameters and a number for int and float ones.
type ConditionDoc struct {
	Parameter string `json:"parameter" yaml:"parameter"`
	Operator  string `json:"operator" yaml:"operator"`
	Value     any    `json:"value" yaml:"value"`
}

// ParameterDoc declares one typed parameter.
type ParameterDoc struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	DefaultValue any    `json:"defaultValue" yaml:"defaultValue"`
}

// ParseGraphJSON decodes an editor graph document from JSON.
func ParseGraphJSON(data []byte) (*GraphDoc, error) {
	var doc GraphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cadence: parse graph json: %w", err)
	}
	return &doc, nil
}

// JSON renders the document, indented, with the field layout editors
// expect.
func (d *GraphDoc) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cadence: encode graph json: %w", err)
	}
	return data, nil
}

// ParseGraphYAML decodes a graph document from YAML.
func ParseGraphYAML(data []byte) (*GraphDoc, error) {
	var doc GraphDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cadence: parse graph yaml: %w", err)
	}
	return &doc, nil
}

// YAML renders the document as YAML under the same field names as JSON.
func (d *GraphDoc) YAML() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("cadence: encode graph yaml: %w", err)
	}
	return data, nil
}

// ExportGraph captures a machine's graph as an editor document. The
// document has no field for the default state, so the default is written
// first and the rest keep registration order; importing re-derives it from
// that position. Transitions flatten in evaluation order with their index
// recorded as priority, and parameters export their declared defaults, not
// their live values.
func ExportGraph(m *Machine) *GraphDoc {
	if m == nil {
		panic("cadence: cannot export nil machine")
	}
	doc := &GraphDoc{
		States:      []StateDoc{},
		Transitions: []TransitionDoc{},
		Parameters:  []ParameterDoc{},
	}
	ordered := make([]*State, 0, len(m.order))
	if d := m.states[m.defaultName]; d != nil {
		ordered = append(ordered, d)
	}
	for _, s := range m.order {
		if s.Name == m.defaultName {
			continue
		}
		ordered = append(ordered, s)
	}
	for _, s := range ordered {
		doc.States = append(doc.States, StateDoc{
			ID:            s.id,
			Name:          s.Name,
			Position:      PointDoc{X: s.Position.X, Y: s.Position.Y},
			AnimationName: s.AnimationName,
			Speed:         s.Speed,
			Loop:          s.Loop,
		})
	}
	pri := 0
	for _, s := range ordered {
		for _, tr := range s.transitions {
			td := TransitionDoc{
				ID:          tr.id,
				FromStateID: m.states[tr.From].id,
				ToStateID:   m.states[tr.To].id,
				Conditions:  []ConditionDoc{},
				Duration:    tr.Duration,
				Priority:    pri,
			}
			for _, c := range tr.Conditions {
				td.Conditions = append(td.Conditions, ConditionDoc{
					Parameter: c.Parameter,
					Operator:  opName(c.Op),
					Value:     conditionValue(m, c),
				})
			}
			doc.Transitions = append(doc.Transitions, td)
			pri++
		}
	}
	for _, p := range m.paramOrder {
		doc.Parameters = append(doc.Parameters, ParameterDoc{
			Name:         p.Name,
			Type:         paramTypeName(p.Type),
			DefaultValue: paramDefault(p),
		})
	}
	return doc
}

// ImportGraph builds a machine from an editor document, resolving clips
// from lib and binding target. States and parameters register in document
// order; transitions sort by priority so evaluation order survives a round
// trip. Malformed entries (unknown state ids, operators, types) are
// dropped with a warning; the rest of the graph still loads.
func ImportGraph(doc *GraphDoc, lib *Library, target Target) *Machine {
	if doc == nil {
		panic("cadence: cannot import nil graph")
	}
	m := NewMachine(lib, target)

	for _, pd := range doc.Parameters {
		typ, err := paramTypeFromName(pd.Type)
		if err != nil {
			log.Printf("cadence: parameter %q: %v", pd.Name, err)
			continue
		}
		m.AddParameter(pd.Name, typ, pd.DefaultValue)
	}

	byID := make(map[string]string, len(doc.States))
	for _, sd := range doc.States {
		s := m.AddState(sd.Name, sd.AnimationName)
		s.Speed = sd.Speed
		s.Loop = sd.Loop
		s.Position = Point{X: sd.Position.X, Y: sd.Position.Y}
		if sd.ID != "" {
			s.id = sd.ID
			byID[sd.ID] = sd.Name
		}
	}

	trs := make([]TransitionDoc, len(doc.Transitions))
	copy(trs, doc.Transitions)
	sort.SliceStable(trs, func(i, j int) bool { return trs[i].Priority < trs[j].Priority })

	for _, td := range trs {
		from, okFrom := byID[td.FromStateID]
		to, okTo := byID[td.ToStateID]
		if !okFrom || !okTo {
			log.Printf("cadence: transition %q references an unknown state id", td.ID)
			continue
		}
		conds := make([]Condition, 0, len(td.Conditions))
		ok := true
		for _, cd := range td.Conditions {
			c, err := conditionFromDoc(cd)
			if err != nil {
				log.Printf("cadence: transition %q: %v", td.ID, err)
				ok = false
				break
			}
			conds = append(conds, c)
		}
		if !ok {
			continue
		}
		tr, err := m.AddTransition(from, to)
		if err != nil {
			continue
		}
		tr.Duration = td.Duration
		tr.Conditions = conds
		if td.ID != "" {
			tr.id = td.ID
		}
	}
	return m
}

func opName(op CondOp) string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGte:
		return ">="
	default:
		return "<="
	}
}

func opFromName(s string) (CondOp, error) {
	switch s {
	case "==":
		return OpEq, nil
	case "!=":
		return OpNeq, nil
	case ">":
		return OpGt, nil
	case "<":
		return OpLt, nil
	case ">=":
		return OpGte, nil
	case "<=":
		return OpLte, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

func paramTypeName(t ParamType) string {
	switch t {
	case ParamBool:
		return "bool"
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	default:
		return "trigger"
	}
}

func paramTypeFromName(s string) (ParamType, error) {
	switch s {
	case "bool":
		return ParamBool, nil
	case "int":
		return ParamInt, nil
	case "float":
		return ParamFloat, nil
	case "trigger":
		return ParamTrigger, nil
	}
	return 0, fmt.Errorf("unknown parameter type %q", s)
}

// conditionValue picks the document value for one clause based on the
// parameter's declared type: bools carry the flag, triggers write true,
// numeric parameters carry the threshold.
func conditionValue(m *Machine, c Condition) any {
	if p := m.params[c.Parameter]; p != nil {
		switch p.Type {
		case ParamBool:
			return c.Bool
		case ParamTrigger:
			return true
		case ParamInt:
			return int(c.Number)
		}
	}
	return c.Number
}

func conditionFromDoc(cd ConditionDoc) (Condition, error) {
	op, err := opFromName(cd.Operator)
	if err != nil {
		return Condition{}, err
	}
	c := Condition{Parameter: cd.Parameter, Op: op}
	switch v := cd.Value.(type) {
	case bool:
		c.Bool = v
	case int:
		c.Number = float64(v)
	case int64:
		c.Number = float64(v)
	case float64:
		c.Number = v
	case nil:
		// trigger clauses need no threshold
	default:
		return Condition{}, fmt.Errorf("condition on %q has unsupported value %T", cd.Parameter, cd.Value)
	}
	return c, nil
}

func paramDefault(p *Parameter) any {
	switch p.Type {
	case ParamBool:
		return p.defB
	case ParamInt:
		return p.defI
	case ParamFloat:
		return p.defF
	default:
		return false
	}
}
