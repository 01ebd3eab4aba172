package fill

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Acrobat field type names as they appear in /FT.
const (
	ftText      = "Tx"
	ftButton    = "Btn"
	ftChoice    = "Ch"
	ftSignature = "Sig"
)

// Field flag bits from the /Ff entry.
const (
	flagReadOnly   = 1 << 0
	flagRequired   = 1 << 1
	flagRadio      = 1 << 15
	flagPushbutton = 1 << 16
)

// Field type labels reported to callers.
const (
	FieldText      = "text"
	FieldCheckbox  = "checkbox"
	FieldRadio     = "radio"
	FieldChoice    = "choice"
	FieldSignature = "signature"
	FieldButton    = "button"
	FieldUnknown   = "unknown"
)

// Field is one terminal form field found in a document.
type Field struct {
	FullName string   `json:"full_name"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Value    string   `json:"value,omitempty"`
	OnStates []string `json:"on_states,omitempty"`
	Options  []string `json:"options,omitempty"`
	ReadOnly bool     `json:"read_only,omitempty"`
	Required bool     `json:"required,omitempty"`
	MaxLen   int      `json:"max_len,omitempty"`

	dict    types.Dict
	widgets []types.Dict
}

// Checked reports whether a checkbox or radio field has an on value.
func (f *Field) Checked() bool {
	return f.Value != "" && f.Value != "Off"
}

// fieldIndex holds every terminal field of a document in declaration
// order, with lookup maps keyed by exact, lowercased, and normalized
// names. Both the full hierarchical name and the leaf name are
// registered; on key collisions the first field wins.
type fieldIndex struct {
	fields  []*Field
	byName  map[string]*Field
	byLower map[string]*Field
	byNorm  map[string]*Field
}

func newFieldIndex() *fieldIndex {
	return &fieldIndex{
		byName:  make(map[string]*Field),
		byLower: make(map[string]*Field),
		byNorm:  make(map[string]*Field),
	}
}

// lookup probes by exact name only; spelling tolerance lives in the
// later match stages.
func (x *fieldIndex) lookup(name string) (*Field, bool) {
	f, ok := x.byName[name]
	return f, ok
}

// lookupFold probes case-insensitively.
func (x *fieldIndex) lookupFold(name string) (*Field, bool) {
	f, ok := x.byLower[strings.ToLower(name)]
	return f, ok
}

// fuzzyLookup tries normalized equality, then scans fields in document
// order for containment in either direction. First match wins.
func (x *fieldIndex) fuzzyLookup(name string) (*Field, bool) {
	if f, ok := x.byNorm[normalizeFieldName(name)]; ok {
		return f, true
	}
	for _, f := range x.fields {
		if namesMatch(f.FullName, name) || namesMatch(f.Name, name) {
			return f, true
		}
	}
	return nil, false
}

func (x *fieldIndex) add(f *Field) {
	x.fields = append(x.fields, f)
	for _, key := range []string{f.FullName, f.Name} {
		if key == "" {
			continue
		}
		if _, taken := x.byName[key]; !taken {
			x.byName[key] = f
		}
		if lk := strings.ToLower(key); lk != "" {
			if _, taken := x.byLower[lk]; !taken {
				x.byLower[lk] = f
			}
		}
		if nk := normalizeFieldName(key); nk != "" {
			if _, taken := x.byNorm[nk]; !taken {
				x.byNorm[nk] = f
			}
		}
	}
}

// acroFormDict returns the document's AcroForm dictionary, or nil when
// the document has none.
func acroFormDict(ctx *model.Context) (types.Dict, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("reading document catalog: %w", err)
	}
	obj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroDict, err := ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("dereferencing form dictionary: %w", err)
	}
	return acroDict, nil
}

// buildFieldIndex walks the AcroForm field tree and indexes every
// terminal field. Unreadable entries are skipped, not fatal.
func buildFieldIndex(ctx *model.Context) (*fieldIndex, error) {
	idx := newFieldIndex()

	acroDict, err := acroFormDict(ctx)
	if err != nil {
		return nil, err
	}
	if acroDict == nil {
		return idx, nil
	}

	fieldsObj, found := acroDict.Find("Fields")
	if !found {
		return idx, nil
	}
	fieldsArr, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("dereferencing field array: %w", err)
	}

	for _, obj := range fieldsArr {
		walkFieldTree(ctx, idx, obj, "", "", 0)
	}
	return idx, nil
}

type kidNode struct {
	obj  types.Object
	dict types.Dict
}

// walkFieldTree descends one field tree node. /FT and /Ff inherit down
// the tree. A node whose kids carry their own /T is an intermediate
// naming node; a node whose kids do not is a terminal field and the
// kids are its widgets.
func walkFieldTree(ctx *model.Context, idx *fieldIndex, obj types.Object, prefix, inhFT string, inhFlags int) {
	dict, err := ctx.DereferenceDict(obj)
	if err != nil || dict == nil {
		return
	}

	name := dictString(ctx, dict, "T")
	fullName := name
	if prefix != "" {
		if name != "" {
			fullName = prefix + "." + name
		} else {
			fullName = prefix
		}
	}

	ft := inhFT
	if local := dictName(ctx, dict, "FT"); local != "" {
		ft = local
	}
	flags := inhFlags
	if local, ok := dictInt(ctx, dict, "Ff"); ok {
		flags = local
	}

	kids := childNodes(ctx, dict)
	if len(kids) > 0 && anyKidNamed(ctx, kids) {
		for _, kid := range kids {
			walkFieldTree(ctx, idx, kid.obj, fullName, ft, flags)
		}
		return
	}

	if fullName == "" {
		return
	}

	f := &Field{
		Name:     name,
		FullName: fullName,
		Type:     fieldType(ft, flags),
		ReadOnly: flags&flagReadOnly != 0,
		Required: flags&flagRequired != 0,
		dict:     dict,
	}
	if len(kids) > 0 {
		for _, kid := range kids {
			f.widgets = append(f.widgets, kid.dict)
		}
	} else {
		f.widgets = []types.Dict{dict}
	}

	if maxLen, ok := dictInt(ctx, dict, "MaxLen"); ok {
		f.MaxLen = maxLen
	}
	f.Options = choiceOptions(ctx, dict)
	f.OnStates = buttonOnStates(ctx, f)
	f.Value = fieldValue(ctx, dict, ft)

	idx.add(f)
}

func childNodes(ctx *model.Context, dict types.Dict) []kidNode {
	kidsObj, found := dict.Find("Kids")
	if !found {
		return nil
	}
	kidsArr, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil
	}
	var kids []kidNode
	for _, kidObj := range kidsArr {
		kidDict, err := ctx.DereferenceDict(kidObj)
		if err != nil || kidDict == nil {
			continue
		}
		kids = append(kids, kidNode{obj: kidObj, dict: kidDict})
	}
	return kids
}

func anyKidNamed(ctx *model.Context, kids []kidNode) bool {
	for _, kid := range kids {
		if dictString(ctx, kid.dict, "T") != "" {
			return true
		}
	}
	return false
}

func fieldType(ft string, flags int) string {
	switch ft {
	case ftText:
		return FieldText
	case ftButton:
		if flags&flagPushbutton != 0 {
			return FieldButton
		}
		if flags&flagRadio != 0 {
			return FieldRadio
		}
		return FieldCheckbox
	case ftChoice:
		return FieldChoice
	case ftSignature:
		return FieldSignature
	default:
		return FieldUnknown
	}
}

// fieldValue reads /V according to the field type. Button values are
// names; Off means unset and reads back as empty.
func fieldValue(ctx *model.Context, dict types.Dict, ft string) string {
	vObj, found := dict.Find("V")
	if !found {
		return ""
	}
	switch ft {
	case ftButton:
		state, err := ctx.DereferenceName(vObj, model.V10, nil)
		if err != nil || state == "Off" {
			return ""
		}
		return string(state)
	default:
		value, err := ctx.DereferenceStringOrHexLiteral(vObj, model.V10, nil)
		if err != nil {
			return ""
		}
		return value
	}
}

// buttonOnStates collects the non-Off appearance state names of a
// button field from its own and its widgets' /AP /N dictionaries.
// Sorted for deterministic output.
func buttonOnStates(ctx *model.Context, f *Field) []string {
	if f.Type != FieldCheckbox && f.Type != FieldRadio {
		return nil
	}
	seen := make(map[string]bool)
	collect := func(dict types.Dict) {
		for _, state := range appearanceStates(ctx, dict) {
			seen[state] = true
		}
	}
	collect(f.dict)
	for _, w := range f.widgets {
		collect(w)
	}

	states := make([]string, 0, len(seen))
	for state := range seen {
		states = append(states, state)
	}
	sort.Strings(states)
	return states
}

func appearanceStates(ctx *model.Context, dict types.Dict) []string {
	apObj, found := dict.Find("AP")
	if !found {
		return nil
	}
	apDict, err := ctx.DereferenceDict(apObj)
	if err != nil || apDict == nil {
		return nil
	}
	nObj, found := apDict.Find("N")
	if !found {
		return nil
	}
	nDict, err := ctx.DereferenceDict(nObj)
	if err != nil || nDict == nil {
		return nil
	}
	var states []string
	for state := range nDict {
		if state != "Off" {
			states = append(states, state)
		}
	}
	return states
}

func choiceOptions(ctx *model.Context, dict types.Dict) []string {
	optObj, found := dict.Find("Opt")
	if !found {
		return nil
	}
	optArr, err := ctx.DereferenceArray(optObj)
	if err != nil {
		return nil
	}
	var options []string
	for _, o := range optArr {
		if s, err := ctx.DereferenceStringOrHexLiteral(o, model.V10, nil); err == nil && s != "" {
			options = append(options, s)
		}
	}
	return options
}

// dictString reads a string or hex literal entry.
func dictString(ctx *model.Context, dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return s
}

// dictName reads a name entry.
func dictName(ctx *model.Context, dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	n, err := ctx.DereferenceName(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return string(n)
}

// dictInt reads an integer entry.
func dictInt(ctx *model.Context, dict types.Dict, key string) (int, bool) {
	obj, found := dict.Find(key)
	if !found {
		return 0, false
	}
	i, err := ctx.DereferenceInteger(obj)
	if err != nil || i == nil {
		return 0, false
	}
	return int(*i), true
}
