// Copyright © 2024 The ELPS authors

package resources

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// DefaultYear is assumed for datasets that do not carry a year tag.
const DefaultYear = "2021"

// Category identifies the part of the reference documentation an entry was
// extracted from.
type Category int

const (
	CategoryObject Category = iota
	CategoryMethod
	CategoryPropertyGetter
	CategoryPropertySetter
	CategoryFunction
	CategoryEnum
	CategoryDclTile
	CategoryDclAttribute
	CategoryEvent
)

// ValueType describes an argument or return value in a documented
// signature.
type ValueType struct {
	ID        string   `json:"id"`
	TypeNames string   `json:"typeNames"`
	Primitive string   `json:"primitive"`
	Enums     []string `json:"enums,omitempty"`
}

// Entity holds the fields shared by every documented entry.
type Entity struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	GUID        string   `json:"guid"`
	Description string   `json:"description"`
	Platforms   string   `json:"platforms"`
}

// Function is one documented signature of a function, method or property
// accessor.
type Function struct {
	Entity
	Arguments    []ValueType `json:"arguments"`
	ReturnType   *ValueType  `json:"returnType"`
	ValidObjects []string    `json:"validObjects"`
	Signature    string      `json:"signature"`
}

// Object lists the methods and properties of an ActiveX object.
type Object struct {
	Entity
	Methods    []string `json:"methods"`
	Properties []string `json:"properties"`
}

// DclTile is a dialog definition tile and the attributes it accepts.
type DclTile struct {
	Entity
	Attributes []string `json:"attributes"`
	Signature  string   `json:"signature"`
}

// DclAttribute is a dialog definition attribute.
type DclAttribute struct {
	Entity
	ValueType *ValueType `json:"valueType"`
	Signature string     `json:"signature"`
}

// Dataset is the documentation abstraction extracted from the AutoLISP
// reference.  Map keys are lowercase names.
type Dataset struct {
	Year               string                   `json:"year"`
	Functions          map[string]*Function     `json:"functions"`
	AmbiguousFunctions map[string][]*Function   `json:"ambiguousFunctions"`
	Enumerators        map[string]string        `json:"enumerators"`
	Objects            map[string]*Object       `json:"objects"`
	DclTiles           map[string]*DclTile      `json:"dclTiles"`
	DclAttributes      map[string]*DclAttribute `json:"dclAttributes"`
}

// ParseDataset decodes a dataset from r.
func ParseDataset(r io.Reader) (*Dataset, error) {
	ds := &Dataset{}
	if err := json.NewDecoder(r).Decode(ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if ds.Year == "" {
		ds.Year = DefaultYear
	}
	return ds, nil
}

// Names returns the function names, ambiguous function names and
// enumerator names of the dataset, sorted.  Object and dialog names are not
// callable from AutoLISP and are excluded.
func (ds *Dataset) Names() []string {
	if ds == nil {
		return nil
	}
	names := make([]string, 0, len(ds.Functions)+len(ds.AmbiguousFunctions)+len(ds.Enumerators))
	for name := range ds.Functions {
		names = append(names, name)
	}
	for name := range ds.AmbiguousFunctions {
		names = append(names, name)
	}
	for name := range ds.Enumerators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signatures returns every documented signature for name.
func (ds *Dataset) Signatures(name string) []*Function {
	if ds == nil {
		return nil
	}
	if fn, ok := ds.Functions[name]; ok {
		return []*Function{fn}
	}
	return ds.AmbiguousFunctions[name]
}
