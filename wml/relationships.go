package wml

import (
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"docxml/xmltree"
)

const (
	NamespaceRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"

	relTypeBase           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	RelTypeNumbering      = relTypeBase + "numbering"
	RelTypeImage          = relTypeBase + "image"
	RelTypeHyperlink      = relTypeBase + "hyperlink"
	RelTypeStyles         = relTypeBase + "styles"
	RelTypeFootnotes      = relTypeBase + "footnotes"
	RelTypeOfficeDocument = relTypeBase + "officeDocument"
)

// Relationship links part to another part or to external resource.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Relationships is part relationships (_rels/*.rels) root. Ids are supplied
// by the caller, NextID could be used to get unused one.
type Relationships struct {
	root *xmltree.Node
	rels []Relationship
	err  error
}

func NewRelationships() *Relationships {
	return &Relationships{root: xmltree.New("Relationships").SetAttr("xmlns", NamespaceRelationships)}
}

func (r *Relationships) XMLNode() *xmltree.Node {
	if r == nil {
		return nil
	}
	return r.root
}

func (r *Relationships) Err() error {
	return r.err
}

func (r *Relationships) Len() int {
	return len(r.rels)
}

// Get returns relationship by id.
func (r *Relationships) Get(id string) (Relationship, bool) {
	for _, rel := range r.rels {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// NextID returns "rIdN" with N one more than number of known relationships,
// skipping ids already taken.
func (r *Relationships) NextID() string {
	for i := len(r.rels) + 1; ; i++ {
		id := "rId" + strconv.Itoa(i)
		if _, ok := r.Get(id); !ok {
			return id
		}
	}
}

// Add links relationship. Duplicate or incomplete relationships are recorded
// as errors and not linked.
func (r *Relationships) Add(rel Relationship) *Relationships {
	var err error
	switch {
	case strings.TrimSpace(rel.ID) == "":
		err = invalid("relationship id is empty")
	case rel.Type == "":
		err = invalid("relationship %s has no type", rel.ID)
	case rel.Target == "":
		err = invalid("relationship %s has no target", rel.ID)
	}
	if err == nil {
		if _, ok := r.Get(rel.ID); ok {
			err = invalid("relationship %s is already defined", rel.ID)
		}
	}
	if multierr.AppendInto(&r.err, err) {
		return r
	}

	n := xmltree.New("Relationship").
		SetAttr("Id", rel.ID).
		SetAttr("Type", rel.Type).
		SetAttr("Target", rel.Target)
	if rel.External {
		n.SetAttr("TargetMode", "External")
	}
	r.root.Append(n)
	r.rels = append(r.rels, rel)
	return r
}

// WriteTo serializes relationships part.
func (r *Relationships) WriteTo(w io.Writer, opts ...xmltree.Option) (int64, error) {
	return writePart(w, "relationships", r, opts)
}
